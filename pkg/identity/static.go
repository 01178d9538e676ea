package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a statically configured account.
type User struct {
	Email        string `yaml:"email" json:"email"`
	PasswordHash string `yaml:"password_hash" json:"password_hash"`
	Role         string `yaml:"role" json:"role"`
	Name         string `yaml:"name" json:"name"`
}

// StaticProvider authenticates against a fixed user list with bcrypt hashes.
type StaticProvider struct {
	users map[string]User

	mu   sync.RWMutex
	subs map[int]func(AuthEvent)
	next int
}

// NewStaticProvider indexes users by lower-cased email.
func NewStaticProvider(users []User) *StaticProvider {
	index := make(map[string]User, len(users))
	for _, u := range users {
		index[strings.ToLower(strings.TrimSpace(u.Email))] = u
	}
	return &StaticProvider{users: index, subs: map[int]func(AuthEvent){}}
}

// SignIn checks the password and issues a fresh session id.
func (p *StaticProvider) SignIn(ctx context.Context, creds Credentials) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	user, ok := p.users[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok || user.Role == "" {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	id := Identity{
		Subject:   user.Email,
		Role:      user.Role,
		Name:      user.Name,
		SessionID: uuid.NewString(),
	}
	p.publish(AuthEvent{Type: AuthSignedIn, Identity: id})
	return id, nil
}

// SignOut notifies subscribers; there is no server-side state to clear.
func (p *StaticProvider) SignOut(_ context.Context, id Identity) error {
	p.publish(AuthEvent{Type: AuthSignedOut, Identity: id})
	return nil
}

// Subscribe registers fn for auth state changes.
func (p *StaticProvider) Subscribe(fn func(AuthEvent)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *StaticProvider) publish(event AuthEvent) {
	p.mu.RLock()
	subs := make([]func(AuthEvent), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.RUnlock()
	for _, fn := range subs {
		fn(event)
	}
}

// HashPassword returns a bcrypt hash suitable for User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
