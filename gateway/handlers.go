package gateway

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is the register forwarding payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginRequest is the login forwarding payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// VerifyOTPRequest is the verify-otp forwarding payload. Type defaults to
// "email" when the caller omits it.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Type  string `json:"type"`
}

// Validate will run validation rules
func (r VerifyOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Token, validation.Required),
	)
}

func unprocessable(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": detail})
}

// Register forwards a registration request to the provider
func (g *Gateway) Register(c *fiber.Ctx) error {
	payload := new(RegisterRequest)
	if err := c.BodyParser(payload); err != nil {
		return unprocessable(c, "Email and password are required")
	}

	if err := payload.Validate(); err != nil {
		return unprocessable(c, "Email and password are required")
	}

	return g.forward(c, http.MethodPost, providerRegisterPath, payload, nil, fiber.StatusCreated, "Registration failed")
}

// Login forwards a login request to the provider
func (g *Gateway) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return unprocessable(c, "Email and password are required")
	}

	if err := payload.Validate(); err != nil {
		return unprocessable(c, "Email and password are required")
	}

	return g.forward(c, http.MethodPost, providerLoginPath, payload, nil, fiber.StatusOK, "Login failed")
}

// VerifyOTP forwards an OTP verification request to the provider
func (g *Gateway) VerifyOTP(c *fiber.Ctx) error {
	payload := new(VerifyOTPRequest)
	if err := c.BodyParser(payload); err != nil {
		return unprocessable(c, "Email and token are required")
	}

	if err := payload.Validate(); err != nil {
		return unprocessable(c, "Email and token are required")
	}

	if payload.Type == "" {
		payload.Type = "email"
	}

	return g.forward(c, http.MethodPost, providerVerifyPath, payload, nil, fiber.StatusOK, "OTP verification failed")
}

// Profile forwards a profile read, passing the bearer header through
// unchanged. Requests without one never reach the provider.
func (g *Gateway) Profile(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"detail": "Authorization token is required",
		})
	}

	header := http.Header{}
	header.Set(fiber.HeaderAuthorization, authHeader)

	return g.forward(c, http.MethodGet, providerProfilePath, nil, header, fiber.StatusOK, "Failed to fetch profile")
}
