package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "authToken"
	// DefaultTokenTTL bounds the lifetime of an issued token.
	DefaultTokenTTL = 12 * time.Hour

	tokenIssuer = "courier-dashboard"
)

var errMissingSecret = errors.New("identity: session secret is required")

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	SessionID string `json:"sid"`
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes Tokens.
type TokenOption func(*Tokens)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(t *Tokens) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokens builds a signer for secret.
func NewTokens(secret string, opts ...TokenOption) (*Tokens, error) {
	if secret == "" {
		return nil, errMissingSecret
	}
	t := &Tokens{secret: []byte(secret), ttl: DefaultTokenTTL, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a token for id and returns it with its expiry.
func (t *Tokens) Issue(id Identity) (string, time.Time, error) {
	if !id.Valid() {
		return "", time.Time{}, errors.New("identity: cannot issue token without role")
	}
	now := t.now().UTC()
	expires := now.Add(t.ttl).Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Role:      id.Role,
		Name:      id.Name,
		SessionID: id.SessionID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("identity: sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies token and returns its identity.
func (t *Tokens) Parse(token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return Identity{}, fmt.Errorf("identity: token validation failed: %w", err)
	}
	if !parsed.Valid {
		return Identity{}, errors.New("identity: invalid token")
	}
	id := Identity{
		Subject:   claims.Subject,
		Role:      claims.Role,
		Name:      claims.Name,
		SessionID: claims.SessionID,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if !id.Valid() || id.SessionID == "" {
		return Identity{}, errors.New("identity: token missing role or session")
	}
	return id, nil
}

// Resolve is Parse without the error: malformed, expired or absent tokens
// yield no identity.
func (t *Tokens) Resolve(token string) (Identity, bool) {
	if t == nil || token == "" {
		return Identity{}, false
	}
	id, err := t.Parse(token)
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

// TokenFromRequest reads the session cookie, falling back to a bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return bearer(r.Header.Get("Authorization"))
}

// TokenFromHeaders does what TokenFromRequest does for transports that only
// expose raw header values.
func TokenFromHeaders(cookieHeader, authorization string) string {
	if cookieHeader != "" {
		req := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
		if c, err := req.Cookie(CookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return bearer(authorization)
}

func bearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// SessionCookie builds the cookie that persists token.
func SessionCookie(token string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that removes the session token.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
