// Package session owns "who is logged in": it mediates the auth calls to
// the festival API and keeps the resulting token and user record in durable
// storage so a session survives restarts.
//
// Every auth operation and Logout bumps a generation counter. A response
// that comes back after a newer operation started is discarded, so the
// last call made wins rather than the last response to arrive.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aerophilia/aerophilia-go/internal/logging"
	"github.com/aerophilia/aerophilia-go/internal/metrics"
	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/storage"
)

// Durable storage keys.
const (
	KeyToken = "auth_token"
	KeyUser  = "user_data"
)

// Messages placed in State.Error.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgRegistrationFailed = "Registration failed. Please try again."
	MsgGoogleComingSoon   = "Google login coming soon"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrGoogleComingSoon   = errors.New("google login is not available yet")
	ErrSuperseded         = errors.New("superseded by a newer session operation")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
)

const (
	opLogin    = "login"
	opRegister = "register"
	opGoogle   = "google"
	opRefresh  = "refresh"
)

// DefaultTimeout bounds each call to the API.
const DefaultTimeout = 15 * time.Second

// Authenticator is the festival API as seen by the session.
type Authenticator interface {
	Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error)
	Register(ctx context.Context, creds model.SignUpCredentials) (model.AuthResponse, error)
	CurrentUser(ctx context.Context, token string) (model.User, error)
}

// State is a snapshot handed to the UI.
type State struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	Error           string      `json:"error,omitempty"`
}

// Manager is safe for concurrent use. mu is held across storage writes so
// storage always changes before the in-memory state does; every storage call
// is bounded by the manager's timeout so a slow store cannot hold it forever.
type Manager struct {
	api     Authenticator
	store   storage.Store
	log     *zap.Logger
	metrics *metrics.Collector
	timeout time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	state State
	token string
	gen   uint64
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.log = logging.OrNop(l) } }

func WithMetrics(c *metrics.Collector) Option { return func(m *Manager) { m.metrics = c } }

// WithTimeout bounds API calls; d <= 0 keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithClock replaces time.Now when checking token expiry.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// New builds an unauthenticated manager that reports IsLoading until Init runs.
func New(api Authenticator, store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		api:     api,
		store:   store,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
		now:     time.Now,
		state:   State{IsLoading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a deep copy of the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// Token returns the bearer token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Init restores the session from storage. Corrupt or expired records are
// purged silently; only storage read failures are returned.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	ctx, cancel := m.storeCtx(ctx)
	defer cancel()
	res, err := m.readStored(ctx)
	m.state = State{}
	m.token = ""
	if err != nil {
		m.metrics.TrackRestore("error")
		m.log.Warn("reading stored session failed", zap.Error(err))
		return fmt.Errorf("restore session: %w", err)
	}

	m.metrics.TrackRestore(res.kind.String())
	switch res.kind {
	case restoreOK:
		m.token = res.token
		m.state = State{User: &res.user, IsAuthenticated: true}
		m.log.Info("session restored", zap.String("user_id", res.user.ID))
	case restoreCorrupt, restoreExpired:
		m.log.Info("discarding stored session", zap.Stringer("reason", res.kind))
		if err := m.purge(ctx); err != nil {
			m.log.Warn("purging stored session failed", zap.Error(err))
		}
	}
	return nil
}

// Login authenticates with email and password.
func (m *Manager) Login(ctx context.Context, creds model.LoginCredentials) (model.User, error) {
	return m.authenticate(ctx, opLogin, ErrInvalidCredentials, MsgInvalidCredentials,
		func(ctx context.Context) (model.AuthResponse, error) { return m.api.Login(ctx, creds) })
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, creds model.SignUpCredentials) (model.User, error) {
	return m.authenticate(ctx, opRegister, ErrRegistrationFailed, MsgRegistrationFailed,
		func(ctx context.Context) (model.AuthResponse, error) { return m.api.Register(ctx, creds) })
}

// LoginWithGoogle always fails; no request is made.
func (m *Manager) LoginWithGoogle(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.state.IsLoading = false
	m.state.Error = MsgGoogleComingSoon
	m.metrics.TrackAuth(opGoogle, metrics.OutcomeFailure, 0)
	return ErrGoogleComingSoon
}

// Logout clears storage and memory. It always leaves the session logged
// out; the returned error only reports a failed storage delete.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	ctx, cancel := m.storeCtx(ctx)
	defer cancel()
	err := m.purge(ctx)
	m.state = State{}
	m.token = ""
	if err != nil {
		m.log.Warn("clearing stored session failed", zap.Error(err))
		return fmt.Errorf("logout: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

// UpdateUser merges patch into the current user and persists it. It does
// nothing when logged out.
func (m *Manager) UpdateUser(ctx context.Context, patch model.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated || m.state.User == nil {
		return nil
	}

	updated := patch.Apply(*m.state.User)
	ctx, cancel := m.storeCtx(ctx)
	defer cancel()
	if err := m.writeUser(ctx, updated); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	m.state.User = &updated
	return nil
}

// Refresh reloads the profile from the API. A 401 means the server no longer
// accepts the token: the session is logged out and ErrSessionExpired returned.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	tok, authed, gen := m.token, m.state.IsAuthenticated, m.gen
	m.mu.RUnlock()
	if !authed {
		return ErrNotAuthenticated
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	user, err := m.api.CurrentUser(callCtx, tok)
	cancel()
	took := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, storeCancel := m.storeCtx(ctx)
	defer storeCancel()

	if gen != m.gen {
		m.metrics.TrackAuth(opRefresh, metrics.OutcomeSuperseded, took)
		return ErrSuperseded
	}
	if err != nil {
		m.metrics.TrackAuth(opRefresh, metrics.OutcomeFailure, took)
		if isUnauthorized(err) {
			m.gen++
			if perr := m.purge(ctx); perr != nil {
				m.log.Warn("clearing expired session failed", zap.Error(perr))
			}
			m.state = State{}
			m.token = ""
			m.log.Info("session rejected by API, logged out")
			return ErrSessionExpired
		}
		return fmt.Errorf("refresh profile: %w", err)
	}

	if err := m.writeUser(ctx, user); err != nil {
		m.metrics.TrackAuth(opRefresh, metrics.OutcomeFailure, took)
		return fmt.Errorf("refresh profile: %w", err)
	}
	m.state.User = &user
	m.metrics.TrackAuth(opRefresh, metrics.OutcomeSuccess, took)
	return nil
}

func (m *Manager) authenticate(
	ctx context.Context,
	op string,
	sentinel error,
	msg string,
	call func(context.Context) (model.AuthResponse, error),
) (model.User, error) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state.IsLoading = true
	m.state.Error = ""
	m.mu.Unlock()

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	resp, err := call(callCtx)
	cancel()
	took := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		m.metrics.TrackAuth(op, metrics.OutcomeSuperseded, took)
		m.log.Debug("discarding stale auth response", zap.String("operation", op))
		return model.User{}, ErrSuperseded
	}

	if err == nil {
		sctx, scancel := m.storeCtx(ctx)
		err = m.persist(sctx, resp)
		scancel()
	}
	if err != nil {
		m.state.IsLoading = false
		m.state.Error = msg
		m.metrics.TrackAuth(op, metrics.OutcomeFailure, took)
		m.log.Warn("auth failed", zap.String("operation", op), zap.Error(err))
		return model.User{}, fmt.Errorf("%w: %w", sentinel, err)
	}

	user := resp.User.Clone()
	m.token = resp.Token
	m.state = State{User: &user, IsAuthenticated: true}
	m.metrics.TrackAuth(op, metrics.OutcomeSuccess, took)
	m.log.Info("auth succeeded", zap.String("operation", op), zap.String("user_id", user.ID))
	return user.Clone(), nil
}

// persist writes token then user. A failed user write removes the token
// again so storage never holds half a session.
func (m *Manager) persist(ctx context.Context, resp model.AuthResponse) error {
	if err := m.store.Set(ctx, KeyToken, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := m.writeUser(ctx, resp.User); err != nil {
		if derr := m.store.Delete(ctx, KeyToken); derr != nil {
			m.log.Warn("rolling back stored token failed", zap.Error(derr))
		}
		return err
	}
	return nil
}

func (m *Manager) writeUser(ctx context.Context, u model.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (m *Manager) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Manager) purge(ctx context.Context) error {
	return errors.Join(
		m.store.Delete(ctx, KeyToken),
		m.store.Delete(ctx, KeyUser),
	)
}

func (m *Manager) snapshot() State {
	s := m.state
	if s.User != nil {
		u := s.User.Clone()
		s.User = &u
	}
	return s
}

func isUnauthorized(err error) bool {
	var u interface{ Unauthorized() bool }
	return errors.As(err, &u) && u.Unauthorized()
}
