// Package usercontext propagates the authenticated account owner through
// service calls.
package usercontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type contextKey struct{}

// WithUserID attaches the owning user id to the context.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the owning user id set by the auth middleware.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(contextKey{}).(snowflake.ID)
	return id, ok
}
