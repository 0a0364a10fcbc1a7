package auth

import "context"

type identityKey struct{}

// WithIdentity attaches a verified account id to the request context.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// Identity returns the authenticated account id for the request, if any.
// Every mutation uses this as its authorization gate: when no identity is
// present the operation must answer with a failure envelope and make no
// store calls at all.
func Identity(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}
