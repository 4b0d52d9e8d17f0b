package shared

import (
	"context"

	"github.com/google/uuid"
)

// CurrentUserID extracts the authenticated user's ID from the session
// in context. The second return is false when no valid session exists.
func CurrentUserID(ctx context.Context) (uuid.UUID, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(sess.User())
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentRole extracts the authenticated user's role name from the
// session in context; empty when unauthenticated.
func CurrentRole(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.Role()
}
