// Package session keeps the client-side authentication state: the bearer
// token, the signed-in user, and the timer that signs the user out shortly
// before the token expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/duynhne/loaner-service/internal/clock"
	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/internal/token"
)

// DefaultGracePeriod is how long before token expiry the session is ended,
// so no request goes out with a token about to lapse.
const DefaultGracePeriod = time.Minute

var (
	// ErrInvalidCredentials indicates the authentication endpoint rejected
	// the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired indicates a freshly issued token was already inside
	// the grace period, so the session ended as soon as it started.
	ErrSessionExpired = errors.New("session expired")
)

// Authenticator exchanges credentials for a token. Rejections must wrap
// ErrInvalidCredentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.LoginResponse, error)
}

// Session is a snapshot of an authenticated session.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.AuthUser
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the real clock.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(m *Manager) { m.grace = d }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager owns the session state. At most one expiry timer is armed at any
// time; every login and logout disarms the previous one first. Cell
// subscribers must not call Login or Logout.
type Manager struct {
	store  Store
	auth   Authenticator
	clock  clock.Clock
	grace  time.Duration
	logger zerolog.Logger

	// lifecycle serialises sign-in and sign-out, including timer callbacks.
	lifecycle sync.Mutex

	mu         sync.Mutex
	token      string
	expiresAt  time.Time
	timer      *clock.Timer
	generation uint64

	authenticated *Cell[bool]
	user          *Cell[*domain.AuthUser]
}

// NewManager creates an unauthenticated Manager. Call Initialize to restore
// a stored session.
func NewManager(store Store, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		auth:          auth,
		clock:         clock.Real(),
		grace:         DefaultGracePeriod,
		logger:        zerolog.Nop(),
		authenticated: NewCell(false),
		user:          NewCell[*domain.AuthUser](nil),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticated is the live authenticated flag.
func (m *Manager) Authenticated() *Cell[bool] { return m.authenticated }

// User is the live signed-in user, nil when signed out.
func (m *Manager) User() *Cell[*domain.AuthUser] { return m.user }

// Initialize restores the stored session. A missing, malformed or expired
// token, or an unreadable user record, leaves the manager signed out and
// wipes the store.
func (m *Manager) Initialize() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	raw, user, err := m.store.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Stored session unreadable, signing out")
		m.signOut()
		return
	}
	if raw == "" {
		m.signOut()
		return
	}
	if user == nil {
		m.logger.Warn().Msg("Stored token has no user record, signing out")
		m.signOut()
		return
	}

	expiresAt, err := token.ExpiresAt(raw)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Stored token malformed, signing out")
		m.signOut()
		return
	}
	if !m.clock.Now().Before(expiresAt) {
		m.logger.Info().Time("expires_at", expiresAt).Msg("Stored token expired, signing out")
		m.signOut()
		return
	}

	m.establish(raw, user, expiresAt)
}

// Login authenticates and starts a session. A token without a readable
// expiry counts as already expired.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	expiresAt, err := token.ExpiresAt(resp.AccessToken)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Issued token malformed, signing out")
		m.signOut()
		return nil, fmt.Errorf("login %s: %w", email, ErrSessionExpired)
	}

	if err := m.store.Save(resp.AccessToken, resp.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	user := resp.User
	if !m.establish(resp.AccessToken, &user, expiresAt) {
		return nil, fmt.Errorf("login %s: %w", email, ErrSessionExpired)
	}
	m.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("Signed in")
	return &Session{Token: resp.AccessToken, ExpiresAt: expiresAt, User: user}, nil
}

// Logout ends the session, wipes the store and disarms the expiry timer.
// Calling it while signed out is harmless.
func (m *Manager) Logout() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.signOut()
}

// signOut does the work of Logout. Must be called with m.lifecycle held.
func (m *Manager) signOut() {
	m.mu.Lock()
	m.disarmLocked()
	m.token = ""
	m.expiresAt = time.Time{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to clear stored session")
	}

	m.user.Set(nil)
	m.authenticated.Set(false)
}

// IsAuthenticated reports whether a token is held and has not expired.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.clock.Now().Before(m.expiresAt)
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (m *Manager) CurrentUser() *domain.AuthUser {
	u := m.user.Get()
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// IsAdmin reports whether the signed-in user has the admin role.
func (m *Manager) IsAdmin() bool {
	u := m.user.Get()
	return u != nil && u.Role == domain.RoleAdmin && m.IsAuthenticated()
}

// Token returns the bearer token, or "" when signed out.
func (m *Manager) Token() string {
	if !m.IsAuthenticated() {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Session returns a snapshot of the current session, or nil when signed
// out.
func (m *Manager) Session() *Session {
	if !m.IsAuthenticated() {
		return nil
	}
	m.mu.Lock()
	s := &Session{Token: m.token, ExpiresAt: m.expiresAt}
	m.mu.Unlock()
	if u := m.CurrentUser(); u != nil {
		s.User = *u
	}
	return s
}

// establish publishes the session and arms its expiry timer. It reports
// false when the deadline is already inside the grace period, in which case
// the manager is signed out before it returns. Must be called with
// m.lifecycle held.
func (m *Manager) establish(raw string, user *domain.AuthUser, expiresAt time.Time) bool {
	now := m.clock.Now()
	if expiresAt.IsZero() || !now.Add(m.grace).Before(expiresAt) {
		m.logger.Info().Time("expires_at", expiresAt).Msg("Token inside grace period, signing out")
		m.signOut()
		return false
	}
	delay := expiresAt.Sub(now) - m.grace

	m.mu.Lock()
	m.disarmLocked()
	m.token = raw
	m.expiresAt = expiresAt
	gen := m.generation
	m.timer = m.clock.AfterFunc(delay, func() { m.expire(gen) })
	m.mu.Unlock()

	m.user.Set(user)
	m.authenticated.Set(true)

	m.logger.Debug().Dur("delay", delay).Time("expires_at", expiresAt).Msg("Expiry timer armed")
	return true
}

// disarmLocked stops the pending timer. The generation bump makes a timer
// that already started firing a no-op. Must be called with m.mu held.
func (m *Manager) disarmLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
}

// expire signs out if the timer of generation gen is still the armed one.
func (m *Manager) expire(gen uint64) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.mu.Lock()
	current := gen == m.generation && m.timer != nil
	if current {
		m.timer = nil
	}
	m.mu.Unlock()
	if !current {
		return
	}

	m.logger.Info().Msg("Session expired, signing out")
	m.signOut()
}
