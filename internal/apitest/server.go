// Package apitest is an in-memory stand-in for the festival REST API,
// served over httptest for client and session tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aerophilia/aerophilia-go/internal/model"
	"github.com/aerophilia/aerophilia-go/internal/token"
	"github.com/aerophilia/aerophilia-go/internal/validation"
)

type account struct {
	user model.User
	hash string
}

// Backend holds accounts and the event catalog.
type Backend struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	events   []model.Event
	secret   string
	tokenTTL time.Duration
	delay    time.Duration
	rps      float64
	burst    int
	hits     map[string]int
	lastReq  string
}

// Option configures a Backend.
type Option func(*Backend)

// WithEvents seeds the catalog served by GET /events.
func WithEvents(events ...model.Event) Option {
	return func(b *Backend) { b.events = append(b.events, events...) }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) { b.tokenTTL = ttl }
}

// WithRateLimit enables per-IP limiting on the auth routes.
func WithRateLimit(rps float64, burst int) Option {
	return func(b *Backend) { b.rps, b.burst = rps, burst }
}

// New creates an empty backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		byEmail:  make(map[string]*account),
		byID:     make(map[string]*account),
		secret:   "apitest-secret",
		tokenTTL: time.Hour,
		hits:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start serves the backend on a loopback listener. Callers must Close it.
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b.Handler())
}

// AddUser seeds an account and returns the stored user.
func (b *Backend) AddUser(u model.User, password string) model.User {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	if u.RegisteredEvents == nil {
		u.RegisteredEvents = []string{}
	}
	if u.TeamInvitations == nil {
		u.TeamInvitations = []model.TeamInvitation{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	acc := &account{user: u, hash: hash}
	b.byEmail[u.Email] = acc
	b.byID[u.ID] = acc
	return u
}

// SetDelay makes every handler wait d before answering.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

// Hits reports how many requests reached path.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// LastRequestID is the X-Request-ID of the most recent request.
func (b *Backend) LastRequestID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastReq
}

// IssueToken signs a token for userID as the backend would.
func (b *Backend) IssueToken(userID string, ttl time.Duration) string {
	tok, err := token.Issue(userID, "", b.secret, ttl)
	if err != nil {
		panic(err)
	}
	return tok
}

// Handler builds the chi router.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(b.record)

	r.Group(func(r chi.Router) {
		if b.rps > 0 {
			r.Use(rateLimit(b.rps, b.burst))
		}
		r.Post("/auth/login", b.handleLogin)
		r.Post("/auth/register", b.handleRegister)
	})

	r.With(bearerAuth(b.secret)).Get("/auth/me", b.handleMe)
	r.Get("/events", b.handleListEvents)

	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.URL.Path]++
		b.lastReq = chimiddleware.GetReqID(r.Context())
		delay := b.delay
		b.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginCredentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b.mu.Lock()
	acc, ok := b.byEmail[strings.ToLower(strings.TrimSpace(req.Email))]
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	match, err := verifyPassword(req.Password, acc.hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !match {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	b.writeAuth(w, http.StatusOK, acc.user)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpCredentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.SignUp(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	b.mu.Lock()
	_, taken := b.byEmail[email]
	b.mu.Unlock()
	if taken {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	user := b.AddUser(model.User{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		College:   req.College,
		CreatedAt: time.Now().UTC(),
	}, req.Password)

	b.writeAuth(w, http.StatusCreated, user)
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	b.mu.Lock()
	acc, found := b.byID[id]
	b.mu.Unlock()
	if !found {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) handleListEvents(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	events := append([]model.Event{}, b.events...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

func (b *Backend) writeAuth(w http.ResponseWriter, status int, user model.User) {
	tok, err := token.Issue(user.ID, user.Email, b.secret, b.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, status, model.AuthResponse{User: user, Token: tok})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}
