package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/loaner-service/internal/clock"
	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/internal/token"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

var (
	epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	admin = domain.AuthUser{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin}
	staff = domain.AuthUser{ID: "u2", Name: "Sam", Email: "sam@example.com", Role: domain.RoleStaff}
)

// issue signs a token for user that expires ttl after the clock's now.
func issue(t *testing.T, clk clock.Clock, user domain.AuthUser, ttl time.Duration) string {
	t.Helper()
	raw, _, err := token.NewIssuer(testSecret, "loaner-test", ttl, clk).Issue(user)
	require.NoError(t, err)
	return raw
}

type fakeAuthenticator struct {
	response *domain.LoginResponse
	err      error
	calls    int
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, email, _ string) (*domain.LoginResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newManager(t *testing.T, store Store, auth Authenticator) (*Manager, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(epoch)
	return NewManager(store, auth, WithClock(clk)), clk
}

func TestInitialize_ExpiredTokenClearsStore(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch.Add(-3 * time.Hour))
	require.NoError(t, store.Save(issue(t, clk, admin, time.Hour), admin))

	m, fake := newManager(t, store, nil)
	m.Initialize()

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.Authenticated().Get())
	assert.Nil(t, m.CurrentUser())
	assert.Empty(t, store.Get(KeyToken))
	assert.Empty(t, store.Get(KeyUser))
	assert.Equal(t, 0, fake.PendingCount())
}

func TestInitialize_ValidTokenArmsOneTimer(t *testing.T) {
	store := NewMemoryStore()
	m, clk := newManager(t, store, nil)
	require.NoError(t, store.Save(issue(t, clk, admin, time.Hour), admin))

	m.Initialize()

	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.Authenticated().Get())
	assert.Equal(t, &admin, m.CurrentUser())
	assert.True(t, m.IsAdmin())
	assert.Equal(t, 1, clk.PendingCount())
}

func TestInitialize_DegradesToSignedOut(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"malformed token", "definitely.not.jwt"},
		{"single segment", "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			require.NoError(t, store.Save(tt.token, admin))

			m, clk := newManager(t, store, nil)
			m.Initialize()

			assert.False(t, m.IsAuthenticated())
			assert.Nil(t, m.CurrentUser())
			assert.Empty(t, store.Get(KeyUser))
			assert.Equal(t, 0, clk.PendingCount())
		})
	}
}

func TestInitialize_TokenInsideGracePeriodSignsOutImmediately(t *testing.T) {
	store := NewMemoryStore()
	m, clk := newManager(t, store, nil)
	require.NoError(t, store.Save(issue(t, clk, admin, 30*time.Second), admin))

	m.Initialize()

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.Authenticated().Get())
	assert.Empty(t, store.Get(KeyToken))
	assert.Equal(t, 0, clk.PendingCount())
}

func TestInitialize_CorruptUserRecordSignsOut(t *testing.T) {
	tests := []struct {
		name string
		user string
	}{
		{"undecodable", "{not json"},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			m, clk := newManager(t, store, nil)
			store.values = map[string]string{
				KeyToken: issue(t, clk, admin, time.Hour),
				KeyUser:  tt.user,
			}

			m.Initialize()

			assert.False(t, m.IsAuthenticated())
			assert.False(t, m.Authenticated().Get())
			assert.Nil(t, m.CurrentUser())
			assert.Empty(t, store.Get(KeyToken))
			assert.Equal(t, 0, clk.PendingCount())
		})
	}
}

func TestLogin_AutoLogoutOneMinuteBeforeExpiry(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, staff, 2*time.Minute),
		User:        staff,
	}}
	m := NewManager(store, auth, WithClock(clk))
	m.Initialize()

	sess, err := m.Login(context.Background(), staff.Email, "secret")
	require.NoError(t, err)
	assert.Equal(t, staff, sess.User)
	assert.True(t, sess.ExpiresAt.Equal(epoch.Add(2*time.Minute)))
	assert.NotEmpty(t, store.Get(KeyToken))
	assert.True(t, m.Authenticated().Get())
	assert.Equal(t, 1, clk.PendingCount())

	clk.Advance(59 * time.Second)
	assert.True(t, m.Authenticated().Get())

	clk.Advance(time.Second)
	assert.False(t, m.Authenticated().Get())
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.User().Get())
	assert.Empty(t, store.Get(KeyToken))
	assert.Equal(t, 0, clk.PendingCount())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := NewMemoryStore()
	auth := &fakeAuthenticator{err: fmt.Errorf("server said 401: %w", ErrInvalidCredentials)}
	m, clk := newManager(t, store, auth)
	m.Initialize()

	sess, err := m.Login(context.Background(), "x@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, sess)
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, store.Get(KeyToken))
	assert.Equal(t, 0, clk.PendingCount())
}

func TestLogin_MalformedTokenSignsOutImmediately(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"opaque", "opaque"},
		{"no exp claim", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ1MiJ9.c2ln"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			auth := &fakeAuthenticator{response: &domain.LoginResponse{AccessToken: tt.token, User: staff}}
			m, clk := newManager(t, store, auth)

			var cells []bool
			m.Authenticated().Subscribe(func(v bool) { cells = append(cells, v) })

			sess, err := m.Login(context.Background(), staff.Email, "secret")
			require.ErrorIs(t, err, ErrSessionExpired)
			assert.Nil(t, sess)
			assert.False(t, m.IsAuthenticated())
			assert.False(t, m.Authenticated().Get())
			assert.Nil(t, m.CurrentUser())
			assert.Empty(t, m.Token())
			assert.Empty(t, store.Get(KeyToken))
			assert.Empty(t, store.Get(KeyUser))
			assert.Equal(t, 0, clk.PendingCount())
			assert.NotContains(t, cells, true)
		})
	}
}

func TestLogin_MalformedTokenEndsPreviousSession(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, admin, time.Hour),
		User:        admin,
	}}
	m := NewManager(store, auth, WithClock(clk))
	_, err := m.Login(context.Background(), admin.Email, "secret")
	require.NoError(t, err)

	auth.response = &domain.LoginResponse{AccessToken: "opaque", User: staff}
	_, err = m.Login(context.Background(), staff.Email, "secret")
	require.ErrorIs(t, err, ErrSessionExpired)

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.CurrentUser())
	assert.Empty(t, store.Get(KeyToken))
	assert.Equal(t, 0, clk.PendingCount())
}

func TestExpire_StaleTimerKeepsNewSession(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, staff, time.Hour),
		User:        staff,
	}}
	m := NewManager(store, auth, WithClock(clk))
	_, err := m.Login(context.Background(), staff.Email, "secret")
	require.NoError(t, err)

	m.mu.Lock()
	stale := m.generation
	m.mu.Unlock()

	adminToken := issue(t, clk, admin, time.Hour)
	auth.response = &domain.LoginResponse{AccessToken: adminToken, User: admin}
	_, err = m.Login(context.Background(), admin.Email, "secret")
	require.NoError(t, err)

	// A callback of the replaced timer that was already running.
	m.expire(stale)

	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.Authenticated().Get())
	assert.Equal(t, &admin, m.CurrentUser())
	assert.Equal(t, adminToken, store.Get(KeyToken))
	assert.Equal(t, 1, clk.PendingCount())
}

func TestExpire_ConcurrentWithLogin(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, staff, time.Hour),
		User:        staff,
	}}
	m := NewManager(store, auth, WithClock(clk))

	for i := 0; i < 50; i++ {
		_, err := m.Login(context.Background(), staff.Email, "secret")
		require.NoError(t, err)

		m.mu.Lock()
		gen := m.generation
		m.mu.Unlock()

		done := make(chan struct{})
		go func() {
			defer close(done)
			m.expire(gen)
		}()
		_, err = m.Login(context.Background(), staff.Email, "secret")
		<-done

		// Either the timer won and the second login re-established the
		// session, or the login won and the timer was stale.
		require.NoError(t, err)
		assert.True(t, m.IsAuthenticated())
		assert.True(t, m.Authenticated().Get())
		assert.NotEmpty(t, store.Get(KeyToken))
	}
}

func TestLogin_RearmReplacesTimer(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, staff, 5*time.Minute),
		User:        staff,
	}}
	m := NewManager(store, auth, WithClock(clk))

	_, err := m.Login(context.Background(), staff.Email, "secret")
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	auth.response = &domain.LoginResponse{AccessToken: issue(t, clk, admin, 10*time.Minute), User: admin}
	_, err = m.Login(context.Background(), admin.Email, "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, clk.PendingCount(), "previous timer must be disarmed")

	// The first timer would have fired here.
	clk.Advance(3 * time.Minute)
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, &admin, m.CurrentUser())

	clk.Advance(6 * time.Minute)
	assert.False(t, m.IsAuthenticated())
}

func TestLogout_Idempotent(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, admin, time.Hour),
		User:        admin,
	}}
	m := NewManager(store, auth, WithClock(clk))
	_, err := m.Login(context.Background(), admin.Email, "secret")
	require.NoError(t, err)

	m.Logout()
	first := snapshot(m, store)
	assert.Equal(t, 0, clk.PendingCount())

	m.Logout()
	assert.Equal(t, first, snapshot(m, store))
	assert.Equal(t, 0, clk.PendingCount())

	clk.Advance(2 * time.Hour)
	assert.Equal(t, first, snapshot(m, store))
}

type state struct {
	authenticated bool
	cell          bool
	user          *domain.AuthUser
	token         string
	storedToken   string
	storedUser    string
}

func snapshot(m *Manager, store *MemoryStore) state {
	return state{
		authenticated: m.IsAuthenticated(),
		cell:          m.Authenticated().Get(),
		user:          m.CurrentUser(),
		token:         m.Token(),
		storedToken:   store.Get(KeyToken),
		storedUser:    store.Get(KeyUser),
	}
}

func TestIsAdmin(t *testing.T) {
	for _, user := range []domain.AuthUser{
		{Role: domain.RoleStudent},
		{Role: domain.RoleStaff},
		{Role: domain.RoleAdmin},
	} {
		t.Run(string(user.Role), func(t *testing.T) {
			store := NewMemoryStore()
			m, clk := newManager(t, store, nil)
			require.NoError(t, store.Save(issue(t, clk, user, time.Hour), user))
			m.Initialize()
			assert.Equal(t, user.Role == domain.RoleAdmin, m.IsAdmin())
		})
	}

	m, _ := newManager(t, NewMemoryStore(), nil)
	assert.False(t, m.IsAdmin(), "signed out")
}

func TestObservers_BroadcastAndReplay(t *testing.T) {
	store := NewMemoryStore()
	clk := clock.Fake(epoch)
	auth := &fakeAuthenticator{response: &domain.LoginResponse{
		AccessToken: issue(t, clk, admin, time.Hour),
		User:        admin,
	}}
	m := NewManager(store, auth, WithClock(clk))
	m.Initialize()

	var early []bool
	m.Authenticated().Subscribe(func(v bool) { early = append(early, v) })

	_, err := m.Login(context.Background(), admin.Email, "secret")
	require.NoError(t, err)

	var late []bool
	m.Authenticated().Subscribe(func(v bool) { late = append(late, v) })

	var users []*domain.AuthUser
	m.User().Subscribe(func(u *domain.AuthUser) { users = append(users, u) })

	m.Logout()

	assert.Equal(t, []bool{false, true, false}, early)
	assert.Equal(t, []bool{true, false}, late)
	require.Len(t, users, 2)
	assert.Equal(t, admin.Email, users[0].Email)
	assert.Nil(t, users[1])
}

func TestSession_Snapshot(t *testing.T) {
	store := NewMemoryStore()
	m, clk := newManager(t, store, nil)
	assert.Nil(t, m.Session())
	assert.Empty(t, m.Token())

	raw := issue(t, clk, staff, time.Hour)
	require.NoError(t, store.Save(raw, staff))
	m.Initialize()

	sess := m.Session()
	require.NotNil(t, sess)
	assert.Equal(t, raw, sess.Token)
	assert.Equal(t, staff, sess.User)
	assert.True(t, sess.ExpiresAt.Equal(epoch.Add(time.Hour)))
	assert.Equal(t, raw, m.Token())
}
