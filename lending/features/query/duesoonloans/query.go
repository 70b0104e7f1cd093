package duesoonloans

import (
	"time"
)

const (
	queryType = "DueSoonLoans"
)

// Query represents the intent to list open loans due before Now+Within.
type Query struct {
	Now    time.Time
	Within time.Duration
}

// BuildQuery creates a new Query.
func BuildQuery(now time.Time, within time.Duration) Query {
	return Query{Now: now, Within: within}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
