// Package client talks to the festival REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aerophilia/aerophilia-go/internal/logging"
	"github.com/aerophilia/aerophilia-go/internal/model"
)

// ErrMalformedResponse is returned when a 2xx auth reply lacks a token or user.
var ErrMalformedResponse = errors.New("malformed response from API")

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports a 401.
func (e *APIError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// WithRateLimit throttles auth calls to rps with the given burst.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a client for the API rooted at baseURL, e.g. https://host/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 10),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login handles POST /auth/login.
func (c *Client) Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

// Register handles POST /auth/register.
func (c *Client) Register(ctx context.Context, creds model.SignUpCredentials) (model.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

// CurrentUser handles GET /auth/me.
func (c *Client) CurrentUser(ctx context.Context, bearer string) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", bearer, nil, &user); err != nil {
		return model.User{}, err
	}
	if user.ID == "" {
		return model.User{}, ErrMalformedResponse
	}
	return user, nil
}

// ListEvents handles GET /events.
func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/events", "", nil, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (model.AuthResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return model.AuthResponse{}, fmt.Errorf("auth throttle: %w", err)
		}
	}

	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return model.AuthResponse{}, err
	}
	if resp.Token == "" || resp.User.ID == "" {
		return model.AuthResponse{}, ErrMalformedResponse
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("api request failed", zap.String("path", path), zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		apiErr.Message = envelope.Error
		if apiErr.Message == "" {
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}
