package users

import "context"

type contextKey struct{}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the authenticated user, or an empty user when absent.
func FromContext(ctx context.Context) *User {
	if user, ok := ctx.Value(contextKey{}).(*User); ok {
		return user
	}
	return &User{}
}
