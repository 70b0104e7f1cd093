package openloanforuser

import (
	"github.com/google/uuid"
)

const (
	queryType = "OpenLoanForUser"
)

// Query represents the intent to find the open loan of a user.
type Query struct {
	UserID uuid.UUID
}

// BuildQuery creates a new Query.
func BuildQuery(userID uuid.UUID) Query {
	return Query{UserID: userID}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
