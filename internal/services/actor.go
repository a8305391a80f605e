package services

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// Actor describes who issued a request, for the audit log
type Actor struct {
	UserID    uuid.UUID
	IP        string
	UserAgent string
}

// WithActor attaches the request's actor to ctx
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// WithActorUser records the authenticated user on the actor already in ctx
func WithActorUser(ctx context.Context, userID uuid.UUID) context.Context {
	actor := ActorFrom(ctx)
	actor.UserID = userID
	return WithActor(ctx, actor)
}

// ActorFrom returns the actor of ctx, or the zero Actor
func ActorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}
