package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BenNguyen1412/Do-An-Tot-Nghiep/pkg/logger"
)

// TokenSource supplies the current bearer credential. An empty string means
// the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is the HTTP transport for the auth API. It injects the bearer
// credential on every request and normalizes all failures into *APIError.
// It never retries and never caches.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where the bearer credential comes from.
func WithTokenSource(src TokenSource) ClientOption {
	return func(c *Client) { c.tokens = src }
}

// WithLogger sets the request logger. The default logger is silent.
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the credential source after construction. The session
// manager uses this to register itself with the client it was given.
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokens = src
}

// do performs one request and decodes the response into out (when out is
// non-nil). All failures come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) *APIError {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: KindClient, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &APIError{Kind: KindClient, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// The request left but no response came back.
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindClient, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Kind: KindServerStatus, StatusCode: resp.StatusCode}
		var envelope struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Detail = envelope.Detail
		}
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Kind: KindClient, Err: fmt.Errorf("failed to decode response body: %w", err)}
		}
	}
	return nil
}

// AuthPayload is the response shape of login, register, and refresh.
type AuthPayload struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"`
	User         Profile `json:"user"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest carries registration data.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        string `json:"role,omitempty"`
}

// ProfileUpdate carries the partial fields of a profile update.
type ProfileUpdate struct {
	FullName    string `json:"full_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Login exchanges credentials for a token pair and profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthPayload, *APIError) {
	var payload AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthPayload, *APIError) {
	var payload AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Logout revokes the given refresh token server-side.
func (c *Client) Logout(ctx context.Context, refreshToken string) *APIError {
	body := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", body, nil)
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*Profile, *APIError) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial profile update and returns the full
// updated record.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*Profile, *APIError) {
	var profile Profile
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
