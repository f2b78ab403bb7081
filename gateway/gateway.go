// Package gateway is the same-origin forwarding layer between the client
// flows and the identity provider. It injects the provider base URL, rejects
// structurally incomplete requests with 422 before they leave the origin, and
// otherwise passes bodies and provider errors through verbatim. It adds no
// auth of its own: only the profile route requires (and forwards unchanged) a
// bearer header.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	session "github.com/kentecode/go-session"
)

const (
	providerLoginPath    = "/v1/auth/login"
	providerRegisterPath = "/v1/auth/register"
	providerVerifyPath   = "/v1/auth/verify-otp"
	providerProfilePath  = "/v1/user/profile"
)

// Config holds gateway options
type Config struct {
	// BaseURL is the identity provider origin, e.g. https://api.example.com
	BaseURL string
	// HTTPClient overrides the outbound client; defaults to http.DefaultClient
	HTTPClient *http.Client
	// Logger defaults to the session package logger
	Logger session.Logger
}

// Gateway forwards credential and profile requests to the identity provider
type Gateway struct {
	baseURL string
	http    *http.Client
	logger  session.Logger
}

// New creates a Gateway from config
func New(cfg Config) *Gateway {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := cfg.Logger
	if logger == nil {
		logger = session.DefaultLogger()
	}

	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// App builds the fiber application serving the forwarding routes
func (g *Gateway) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(g.recoverMiddleware)

	app.Post("/api/auth/register", g.Register)
	app.Post("/api/auth/verify-otp", g.VerifyOTP)
	app.Post("/api/auth/login", g.Login)
	app.Get("/api/user/profile", g.Profile)

	return app
}

// recoverMiddleware converts panics into the provider-shaped 500 body so the
// client flows only ever see {detail} payloads.
func (g *Gateway) recoverMiddleware(c *fiber.Ctx) error {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("gateway panic on %s: %v", c.Path(), r)
			_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"detail": fmt.Sprintf("Internal server error: %v", r),
			})
		}
	}()

	return c.Next()
}

func (g *Gateway) internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"detail": fmt.Sprintf("Internal server error: %s", err.Error()),
	})
}

// forward posts body to the provider path and relays the response. Provider
// errors come back as {detail: providerDetail || fallback} with the provider
// status; transport failures are the gateway's own 500.
func (g *Gateway) forward(c *fiber.Ctx, method, path string, body any, header http.Header, okStatus int, fallback string) error {
	reqID := uuid.New().String()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return g.internalError(c, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(c.Context(), method, g.baseURL+path, payload)
	if err != nil {
		return g.internalError(c, err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	g.logger.Info("forwarding %s %s request %s", method, path, reqID)

	res, err := g.http.Do(req)
	if err != nil {
		g.logger.Error("provider unreachable for %s request %s: %v", path, reqID, err)
		return g.internalError(c, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return g.internalError(c, err)
	}

	g.logger.Debug("provider response %d for %s request %s", res.StatusCode, path, reqID)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail := fallback
		var body struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
			detail = body.Detail
		}
		return c.Status(res.StatusCode).JSON(fiber.Map{"detail": detail})
	}

	c.Set("Content-Type", "application/json")
	return c.Status(okStatus).Send(raw)
}
