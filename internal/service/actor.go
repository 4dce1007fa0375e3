package service

import (
	"context"
	"strings"
)

type actorKey struct{}

// WithActor tags ctx with the id of the admin user performing a change.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func actorFrom(ctx context.Context) *string {
	id, ok := ctx.Value(actorKey{}).(string)
	if !ok || strings.TrimSpace(id) == "" {
		return nil
	}
	return &id
}
