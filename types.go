package session

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface used across the package
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Storage is the persistence medium the Store writes through to. Get must
// return ErrNoRecord when the key has never been written.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Navigator receives navigation requests from guards, flows, and bootstrap.
// Implementations route to whatever view layer hosts the library.
type Navigator interface {
	Navigate(route string)
}

// Notifier surfaces transient user-visible notices
type Notifier interface {
	Success(message string)
	Error(message string)
}

// CredentialClient covers the unauthenticated identity-provider operations
// used by the credential flows.
type CredentialClient interface {
	Login(ctx context.Context, email, password string) (Credentials, error)
	Register(ctx context.Context, email, password string) error
	VerifyOTP(ctx context.Context, email, code string) error
}

// ProfileClient fetches the extended profile for an access token. A nil
// profile with a nil error means the identity exists but has no profile
// record yet.
type ProfileClient interface {
	FetchProfile(ctx context.Context, accessToken string) (*UserProfile, error)
}

// Config holds session options
type Config interface {
	GetStorageKey() string
	GetSigninRoute() string
	GetHomeRoute() string
	GetOnboardingRoute() string
	GetLoginRedirectDelay() int
	GetRegisterStepDelay() int
	GetVerifyRedirectDelay() int
	GetOnboardingRedirectDelay() int
	GetOTPLength() int
}

// DefaultLogger returns the fallback stdout logger used when no Logger is
// injected.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
