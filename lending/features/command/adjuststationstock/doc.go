// Package adjuststationstock records a physical recount of a station.
//
// The recount sets capacity and available units absolutely. Its stream includes the
// loans at the station, so a recount racing with a loan or return is retried on top of it.
package adjuststationstock
