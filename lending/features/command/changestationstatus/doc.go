// Package changestationstatus switches a station between Operational, Maintenance and Unknown.
// Only Operational stations hand out umbrellas; returns are accepted in any status.
package changestationstatus
