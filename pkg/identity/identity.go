// Package identity issues and resolves dashboard session tokens on top of an
// identity provider.
package identity

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned when a sign-in does not match any user.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// Identity is the signed-in principal. An empty Role means no identity.
type Identity struct {
	Subject   string `json:"sub"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	SessionID string `json:"sid"`
	// ExpiresAt is the token expiry; zero until a token was issued or parsed.
	ExpiresAt time.Time `json:"-"`
}

// Valid reports whether the identity carries a role.
func (i Identity) Valid() bool { return i.Role != "" }

// Credentials are the sign-in form values.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthEventType names an auth state change.
type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "signed_in"
	AuthSignedOut AuthEventType = "signed_out"
)

// AuthEvent is delivered to provider subscribers.
type AuthEvent struct {
	Type     AuthEventType
	Identity Identity
}

// Provider authenticates users. Implementations are opaque to the dashboard.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (Identity, error)
	SignOut(ctx context.Context, id Identity) error
	Subscribe(fn func(AuthEvent)) (cancel func())
}
