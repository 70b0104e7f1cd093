// Package registerstation puts a dispensing station into service.
package registerstation
