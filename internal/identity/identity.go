// Package identity carries the acting user through the system. Operations
// that attribute writes take an Identity parameter explicitly; the zero
// value means "unauthenticated" and downstream code applies its own
// fallbacks.
package identity

import "context"

type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IsZero reports whether no user is attached.
func (i Identity) IsZero() bool {
	return i.UID == "" && i.Email == "" && i.Name == ""
}

// DisplayName returns the best human-readable name for the user, falling
// back to the email and then "Unknown".
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.Email != "" {
		return i.Email
	}
	return "Unknown"
}

type ctxKey struct{}

// WithIdentity attaches id to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity attached to ctx, or the zero Identity.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
