package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the user a request acts for.
type Identity struct {
	UserID uuid.UUID
	Admin  bool
}

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// ContextWithUserID returns a copy of ctx carrying a non admin user.
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return ContextWithIdentity(ctx, Identity{UserID: userID})
}

// UserIDFromContext returns the authenticated user, or uuid.Nil when the
// request carries no identity.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok {
		return uuid.Nil
	}
	return id.UserID
}

func IsAdmin(ctx context.Context) bool {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return ok && id.Admin
}
