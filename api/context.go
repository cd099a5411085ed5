package api

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type keyType string

const (
	userIDKey keyType = "userID"
	roleKey   keyType = "role"
)

// ctxWithIdentity records the authenticated user on the request context.
func ctxWithIdentity(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// ctxUserID retrieves the authenticated user ID from the context.
func ctxUserID(ctx context.Context) (uuid.UUID, error) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, errors.New("no user in context")
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID in context has the wrong type")
	}
	return id, nil
}

// ctxRole retrieves the authenticated user's role from the context.
func ctxRole(ctx context.Context) string {
	value := ctx.Value(roleKey)
	if value == nil {
		return ""
	}
	role, _ := value.(string)
	return role
}
