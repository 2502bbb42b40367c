package authclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/logger"
)

// ErrNotAuthenticated reports a profile operation attempted without a
// session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Result is the outcome of a session operation surfaced to the caller.
// Failures carry a user-facing message derived from the central status
// mapping; raw transport errors never escape the manager.
type Result struct {
	Success bool
	Message string
	Profile *Profile
}

// SessionManager owns the in-memory session and keeps it consistent with a
// CredentialStore. It is an injectable instance, not package state; all
// mutations go through an internal mutex so the session is always either
// fully authenticated or fully anonymous.
//
// Call Initialize before the first Snapshot or guard evaluation; hydration
// is synchronous, so once Initialize returns the session reflects whatever
// the store held.
type SessionManager struct {
	client *Client
	store  CredentialStore
	log    *logger.Logger

	mu      sync.Mutex
	session Session

	inflight atomic.Int32
}

// SessionManagerOption configures a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithSessionLogger sets the manager's logger. The default is silent.
func WithSessionLogger(log *logger.Logger) SessionManagerOption {
	return func(m *SessionManager) { m.log = log }
}

// NewSessionManager creates a SessionManager backed by the given client and
// store. The manager registers itself as the client's token source so every
// outbound request carries the current credential.
func NewSessionManager(client *Client, store CredentialStore, opts ...SessionManagerOption) *SessionManager {
	m := &SessionManager{
		client: client,
		store:  store,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	client.SetTokenSource(m)
	return m
}

// Token returns the current bearer credential, implementing TokenSource.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// IsAuthenticated reports whether a session is established.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Valid()
}

// Profile returns a copy of the current profile, or nil when anonymous.
func (m *SessionManager) Profile() *Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.User == nil {
		return nil
	}
	user := *m.session.User
	return &user
}

// Busy reports whether a remote operation is in flight. The flag is
// advisory, for duplicate-submission guards; correctness does not depend on
// it. Concurrent operations are last-write-wins.
func (m *SessionManager) Busy() bool {
	return m.inflight.Load() > 0
}

// Snapshot returns an immutable view of the session for guard evaluation.
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{Authenticated: m.session.Valid()}
	if m.session.User != nil {
		snap.Role = m.session.User.Role
	}
	return snap
}

// Initialize hydrates the session from the store. Corrupt or partial
// persisted data is cleared and the manager stays anonymous; startup never
// fails because of bad stored data.
func (m *SessionManager) Initialize(ctx context.Context) error {
	session, err := m.store.Load()
	if err != nil {
		if errors.Is(err, ErrCorruptStore) {
			m.log.Warn("stored session is corrupt, clearing", zap.Error(err))
			m.clearSession()
			return nil
		}
		return err
	}
	if session == nil {
		return nil
	}

	m.mu.Lock()
	m.session = *session
	m.mu.Unlock()
	m.log.Debug("session restored", zap.String("email", session.User.Email))
	return nil
}

// Login authenticates with the remote API. On success the session becomes
// Authenticated and is persisted; on failure the state is unchanged and the
// result carries a user-facing message.
func (m *SessionManager) Login(ctx context.Context, email, password string) Result {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	payload, apiErr := m.client.Login(ctx, LoginRequest{Email: email, Password: password})
	if apiErr != nil {
		m.log.Warn("login failed", zap.String("email", email), zap.Error(apiErr))
		return Result{Message: messageFor(apiErr)}
	}
	if payload.AccessToken == "" {
		return Result{Message: genericMessage}
	}

	user := payload.User
	m.setSession(Session{
		Token:        payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		User:         &user,
	})
	return Result{Success: true, Profile: &user}
}

// Signup registers a new account. It does not establish a session; the
// caller logs in separately after a successful signup.
func (m *SessionManager) Signup(ctx context.Context, req SignupRequest) Result {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	payload, apiErr := m.client.Signup(ctx, req)
	if apiErr != nil {
		m.log.Warn("signup failed", zap.String("email", req.Email), zap.Error(apiErr))
		return Result{Message: messageFor(apiErr)}
	}

	user := payload.User
	return Result{Success: true, Profile: &user}
}

// Logout ends the session. The remote revocation is best effort; local
// state and the store are cleared no matter what, so Logout never fails.
func (m *SessionManager) Logout(ctx context.Context) {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	m.mu.Lock()
	refreshToken := m.session.RefreshToken
	m.mu.Unlock()

	if refreshToken != "" {
		if apiErr := m.client.Logout(ctx, refreshToken); apiErr != nil {
			m.log.Warn("remote logout failed", zap.Error(apiErr))
		}
	}
	m.clearSession()
}

// RefreshProfile re-fetches the current user. A failure means the
// credential is no longer good, so the session is torn down completely.
// Calling it while anonymous is an error and leaves the state untouched.
func (m *SessionManager) RefreshProfile(ctx context.Context) error {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	if m.Token() == "" {
		return ErrNotAuthenticated
	}

	profile, apiErr := m.client.Me(ctx)
	if apiErr != nil {
		m.log.Warn("profile refresh failed, logging out", zap.Error(apiErr))
		m.clearSession()
		return apiErr
	}

	m.mu.Lock()
	// A logout may have landed while the request was in flight; a profile
	// without a credential must never be installed.
	if m.session.Token == "" {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	m.session.User = profile
	session := m.session
	m.mu.Unlock()

	if err := m.store.Save(&session); err != nil {
		m.log.Warn("failed to persist refreshed session", zap.Error(err))
	}
	return nil
}

// UpdateProfile applies a partial profile update. On failure the prior
// profile is untouched; while anonymous it fails without touching state.
func (m *SessionManager) UpdateProfile(ctx context.Context, update ProfileUpdate) Result {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	if m.Token() == "" {
		return Result{Message: notLoggedMessage}
	}

	profile, apiErr := m.client.UpdateProfile(ctx, update)
	if apiErr != nil {
		m.log.Warn("profile update failed", zap.Error(apiErr))
		return Result{Message: messageFor(apiErr)}
	}

	m.mu.Lock()
	if m.session.Token == "" {
		m.mu.Unlock()
		return Result{Message: notLoggedMessage}
	}
	m.session.User = profile
	session := m.session
	m.mu.Unlock()

	if err := m.store.Save(&session); err != nil {
		m.log.Warn("failed to persist updated session", zap.Error(err))
	}

	user := *profile
	return Result{Success: true, Profile: &user}
}

// setSession installs a new authenticated session in memory and the store.
func (m *SessionManager) setSession(session Session) {
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	if err := m.store.Save(&session); err != nil {
		m.log.Warn("failed to persist session", zap.Error(err))
	}
}

// clearSession drops the in-memory session and the store together.
func (m *SessionManager) clearSession() {
	m.mu.Lock()
	m.session = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.log.Warn("failed to clear session store", zap.Error(err))
	}
}
