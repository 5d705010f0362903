package service

import "context"

// Session slot names used by the identity resolver. UserID holds a primary
// key reference; UserDetails holds a serialized entity.UserSnapshot for
// privacy-preserving flows.
const (
	SessionSlotUserID      = "userId"
	SessionSlotUserDetails = "userDetails"
)

// SessionStore is a key-value container scoped to one browser session.
// Implementations are request-scoped and synchronous; there is no shared
// mutable state across requests.
type SessionStore interface {
	// Get returns the value stored under name. The boolean reports presence,
	// so an empty stored value is distinguishable from an absent slot.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set stores a value under name, replacing any previous value.
	Set(ctx context.Context, name, value string) error

	// Unset removes the slot. Removing an absent slot is not an error.
	Unset(ctx context.Context, name string) error
}

// SessionStoreFactory binds a SessionStore to a concrete browser session.
// The HTTP layer resolves the session identifier (cookie) and hands the
// bound store to the application layer through the request context.
type SessionStoreFactory interface {
	ForSession(sessionID string) SessionStore
}
