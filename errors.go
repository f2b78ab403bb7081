package session

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeProviderRejected = "PROVIDER_REJECTED"
	textCodeRequestInFlight  = "REQUEST_IN_FLIGHT"
	textCodeNotHydrated      = "STORE_NOT_HYDRATED"
)

// ErrNoRecord is returned by Storage implementations when the session key was
// never written (fresh install).
var ErrNoRecord = errors.New("no persisted session record")

// ErrRequestInFlight is returned when a flow submit happens while a previous
// request is still pending.
var ErrRequestInFlight = goerrors.New("request already in flight", goerrors.CategoryConflict).
	WithTextCode(textCodeRequestInFlight)

// ErrNotHydrated is returned when a consumer demands a ready session before
// rehydration finished.
var ErrNotHydrated = goerrors.New("session store not hydrated", goerrors.CategoryOperation).
	WithTextCode(textCodeNotHydrated)

// providerError wraps a non-success provider response, keeping the
// provider-supplied detail message for verbatim display.
func providerError(detail, fallback string, status int) error {
	if detail == "" {
		detail = fallback
	}
	return goerrors.New(detail, goerrors.CategoryAuth).
		WithTextCode(textCodeProviderRejected).
		WithMetadata(map[string]any{"status": status})
}

// ProviderDetail extracts the user-facing message from a flow error. Provider
// rejections surface their own detail string; anything else collapses to the
// supplied fallback so transport failures never leak internals to the UI.
func ProviderDetail(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeProviderRejected {
		return richErr.Message
	}

	return fallback
}

// IsProviderError reports whether err originated as a non-success provider
// response rather than a transport or validation failure.
func IsProviderError(err error) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == textCodeProviderRejected
}
