// Package openloanforuser finds the loan a user currently holds.
package openloanforuser
