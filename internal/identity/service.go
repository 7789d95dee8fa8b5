// Package identity implements credential management and session issuance.
// It is the authority on "who is signed in": it verifies passwords, mints
// and validates session tokens, and broadcasts session changes to
// subscribers. It knows nothing about authorization; role decisions belong
// to the profile layer.
package identity

import (
	"context"
	"time"
)

// EventType classifies a session change notification.
type EventType string

const (
	EventInitialSession EventType = "INITIAL_SESSION"
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Metadata carries free-form display attributes captured at sign-up.
type Metadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Identity is the authenticated principal as the credential layer sees it.
type Identity struct {
	ID       uint     `json:"id"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"metadata"`
}

// Session pairs an identity with its bearer token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  *Identity `json:"identity"`
}

// Event is a session change notification. Seq increases monotonically per
// provider so consumers can order events that race with direct reads.
type Event struct {
	Seq     uint64
	Type    EventType
	Session *Session
}

// SignUpParams are the inputs for registering a new account.
type SignUpParams struct {
	Email    string
	Password string
	Metadata Metadata
}

// Service is the credential-layer contract consumed by session controllers
// and HTTP handlers.
type Service interface {
	// GetSession returns the persisted session for the client, or nil when
	// no session is stored or the stored token no longer validates.
	GetSession(ctx context.Context) (*Session, error)

	// Subscribe registers a callback for session change events. The returned
	// function removes the subscription.
	Subscribe(fn func(Event)) (unsubscribe func())

	SignUp(ctx context.Context, params SignUpParams) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error

	// GetCurrentUser resolves the identity behind the persisted session.
	GetCurrentUser(ctx context.Context) (*Identity, error)
}
