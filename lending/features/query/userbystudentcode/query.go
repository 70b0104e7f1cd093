package userbystudentcode

import (
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

const (
	queryType = "UserByStudentCode"
)

// Query represents the intent to look up a user by student code.
type Query struct {
	StudentCode core.StudentCodeString
}

// BuildQuery creates a new Query.
func BuildQuery(studentCode core.StudentCodeString) Query {
	return Query{StudentCode: studentCode}
}

// QueryType returns the query type.
func (q Query) QueryType() string {
	return queryType
}
