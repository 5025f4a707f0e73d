package service

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor attaches the authenticated user's id to the request context so
// services can attribute mutations in the audit log.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

// ActorFromContext returns the acting user's id, or nil for system-initiated
// operations (seeding, migrations).
func ActorFromContext(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return &id
	}
	return nil
}
