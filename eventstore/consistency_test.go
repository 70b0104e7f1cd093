package eventstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrcrpro/panaguas/eventstore"
)

func Test_WithDefaultConsistency(t *testing.T) {
	testCases := []struct {
		name     string
		ctx      context.Context
		expected eventstore.ConsistencyLevel
	}{
		{"unset", context.Background(), eventstore.EventualConsistency},
		{"caller asked for strong", eventstore.WithStrongConsistency(context.Background()), eventstore.StrongConsistency},
		{"caller asked for eventual", eventstore.WithEventualConsistency(context.Background()), eventstore.EventualConsistency},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			ctx := eventstore.WithDefaultConsistency(tc.ctx, eventstore.EventualConsistency)

			// assert
			assert.Equal(t, tc.expected, eventstore.GetConsistencyLevel(ctx))
		})
	}
}
