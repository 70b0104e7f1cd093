// Package core contains the domain of campus umbrella lending: stations dispensing umbrellas,
// users borrowing them with their student code, and loans that must be returned within a
// window depending on the user's donation tier.
//
// Events represent business facts like LoanOpened and LoanClosed rather than CRUD updates.
// The state types (StationInventory, UserLoanState, LoanRecord) are projected from those
// events inside a command's Decide function and never stored themselves.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
