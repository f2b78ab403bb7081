package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	loginPath     = "/api/auth/login"
	registerPath  = "/api/auth/register"
	verifyOTPPath = "/api/auth/verify-otp"
	profilePath   = "/api/user/profile"
)

// Client talks to the identity provider through the same-origin forwarding
// layer. Credentials are forwarded verbatim; only the profile call carries a
// bearer header. Non-success responses decode the provider's {detail} body so
// the flows can show it unchanged.
type Client struct {
	baseURL string
	http    *http.Client
	logger  Logger
}

var _ CredentialClient = (*Client)(nil)
var _ ProfileClient = (*Client)(nil)

// ClientOption customizes Client construction
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client, e.g. to add timeouts
// or a recording transport in tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger overrides the default logger
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a provider client rooted at baseURL. No request timeout
// is imposed here; pass a context with a deadline to the per-call methods or
// inject an http.Client with one.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  defLogger{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

type profileResponse struct {
	Success bool         `json:"success"`
	Profile *UserProfile `json:"profile"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

// Login exchanges credentials for a token bundle
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.post(ctx, loginPath, loginRequest{Email: email, Password: password}, "Login failed", &creds)
	return creds, err
}

// Register creates a pending account; no token is issued until the emailed
// code is verified.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.post(ctx, registerPath, registerRequest{Email: email, Password: password}, "Registration failed", nil)
}

// VerifyOTP confirms the emailed code for a pending registration
func (c *Client) VerifyOTP(ctx context.Context, email, code string) error {
	payload := verifyOTPRequest{Email: email, Token: code, Type: "email"}
	return c.post(ctx, verifyOTPPath, payload, "OTP verification failed", nil)
}

// FetchProfile retrieves the extended profile for an access token. A nil
// profile with nil error means the identity has no profile record yet.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build profile request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "profile request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, c.responseError(res, "Failed to fetch profile")
	}

	var body profileResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode profile response")
	}

	if !body.Success || body.Profile == nil {
		return nil, nil
	}

	return body.Profile, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, fallback string, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, fmt.Sprintf("request to %s failed", path))
	}
	defer res.Body.Close()

	c.logger.Debug("provider call %s status %d took %s", path, res.StatusCode, time.Since(start))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return c.responseError(res, fallback)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode provider response")
		}
	}

	return nil
}

func (c *Client) responseError(res *http.Response, fallback string) error {
	var body detailResponse
	// decode failures leave detail empty and the fallback message applies
	_ = json.NewDecoder(res.Body).Decode(&body)
	return providerError(body.Detail, fallback, res.StatusCode)
}
