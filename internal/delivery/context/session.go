package context

import (
	"context"

	"biblio/internal/domain/service"
)

// KeySessionStore is the key for storing the request's session store in context.
const KeySessionStore ContextKey = "session_store"

// WithSessionStore returns a new context carrying the session store bound to
// the current browser session.
func WithSessionStore(ctx context.Context, store service.SessionStore) context.Context {
	return context.WithValue(ctx, KeySessionStore, store)
}

// GetSessionStore extracts the request's session store from context.Context.
// Returns nil outside a session-bound request, e.g. in console runs.
func GetSessionStore(ctx context.Context) service.SessionStore {
	if store, ok := ctx.Value(KeySessionStore).(service.SessionStore); ok {
		return store
	}

	return nil
}
