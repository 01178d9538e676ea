package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sessions ties a Provider to session tokens. A token is only ever issued
// from a successful provider sign-in, and stops resolving once its session
// ended, whether through SignOut or a provider sign-out event.
type Sessions struct {
	provider Provider
	tokens   *Tokens
	onEnd    func(sessionID string)
	logger   *zap.Logger

	mu          sync.Mutex
	revoked     map[string]time.Time
	unsubscribe func()
}

// SessionsOptions configures Sessions.
type SessionsOptions struct {
	Provider Provider
	Tokens   *Tokens
	// OnEnd runs once per ended session id.
	OnEnd  func(sessionID string)
	Logger *zap.Logger
}

// NewSessions validates its collaborators and subscribes to provider sign-outs.
func NewSessions(opts SessionsOptions) (*Sessions, error) {
	if opts.Provider == nil {
		return nil, errors.New("identity: provider is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("identity: tokens are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Sessions{
		provider: opts.Provider,
		tokens:   opts.Tokens,
		onEnd:    opts.OnEnd,
		logger:   opts.Logger,
		revoked:  map[string]time.Time{},
	}
	s.unsubscribe = opts.Provider.Subscribe(s.handleAuthEvent)
	return s, nil
}

// Close stops listening to provider events.
func (s *Sessions) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Session is a signed-in identity with its token.
type Session struct {
	Identity Identity
	Token    string
	Expires  time.Time
}

// SignIn authenticates with the provider and issues a token.
func (s *Sessions) SignIn(ctx context.Context, creds Credentials) (Session, error) {
	id, err := s.provider.SignIn(ctx, creds)
	if err != nil {
		s.logger.Info("sign in rejected", zap.String("email", creds.Email), zap.Error(err))
		return Session{}, err
	}
	token, expires, err := s.tokens.Issue(id)
	if err != nil {
		return Session{}, fmt.Errorf("identity: issue session: %w", err)
	}
	id.ExpiresAt = expires
	s.logger.Info("signed in", zap.String("role", id.Role), zap.String("session", id.SessionID))
	return Session{Identity: id, Token: token, Expires: expires}, nil
}

// SignOut ends the session named by token. An unreadable or already ended
// token is not an error: there is nothing left to end.
func (s *Sessions) SignOut(ctx context.Context, token string) error {
	id, ok := s.Resolve(token)
	if !ok {
		return nil
	}
	if err := s.provider.SignOut(ctx, id); err != nil {
		return fmt.Errorf("identity: sign out: %w", err)
	}
	s.end(id)
	return nil
}

// Resolve decodes a token into an identity. Malformed, expired and ended
// sessions yield no identity.
func (s *Sessions) Resolve(token string) (Identity, bool) {
	id, ok := s.tokens.Resolve(token)
	if !ok {
		return Identity{}, false
	}
	s.mu.Lock()
	_, revoked := s.revoked[id.SessionID]
	s.mu.Unlock()
	if revoked {
		return Identity{}, false
	}
	return id, true
}

func (s *Sessions) handleAuthEvent(event AuthEvent) {
	if event.Type != AuthSignedOut || event.Identity.SessionID == "" {
		return
	}
	s.end(event.Identity)
}

// end revokes id's session until its token would have expired anyway.
func (s *Sessions) end(id Identity) {
	now := s.tokens.now()
	until := id.ExpiresAt
	if until.IsZero() {
		until = now.Add(s.tokens.ttl)
	}

	s.mu.Lock()
	for sid, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, sid)
		}
	}
	if _, done := s.revoked[id.SessionID]; done {
		s.mu.Unlock()
		return
	}
	s.revoked[id.SessionID] = until
	s.mu.Unlock()

	if s.onEnd != nil {
		s.onEnd(id.SessionID)
	}
	s.logger.Info("signed out", zap.String("role", id.Role), zap.String("session", id.SessionID))
}
