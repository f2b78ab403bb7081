package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuthUser is the minimal identity extracted from a login response
type AuthUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// UUID parses the provider user id as a UUID
func (u AuthUser) UUID() (uuid.UUID, error) {
	return uuid.Parse(u.UserID)
}

// UserProfile is the extended record fetched after authentication. Every
// field beyond the id is optional; the provider omits what it does not track.
type UserProfile struct {
	UserID        string     `json:"user_id"`
	Email         string     `json:"email,omitempty"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Role          string     `json:"role,omitempty"`
	AccountStatus string     `json:"account_status,omitempty"`
	ReferralCode  string     `json:"referral_code,omitempty"`
	DeviceID      string     `json:"device_id,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// FullName joins the optional name parts
func (p UserProfile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// Credentials is the token bundle returned by a successful login
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// Session is the authoritative authentication record. It is persisted as a
// single flat JSON document under the configured storage key; IsLoading is
// process-local and never round-trips.
type Session struct {
	AccessToken     string       `json:"accessToken,omitempty"`
	RefreshToken    string       `json:"refreshToken,omitempty"`
	User            *AuthUser    `json:"user,omitempty"`
	Profile         *UserProfile `json:"profile,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"-"`
}

// Ready reports whether rehydration has completed. No authentication
// decision may be made while Ready is false.
func (s Session) Ready() bool {
	return !s.IsLoading
}

func (s Session) String() string {
	user := "<nil>"
	if s.User != nil {
		user = fmt.Sprintf("%s <%s>", s.User.UserID, s.User.Email)
	}
	return fmt.Sprintf(
		"Session(user=%s authenticated=%t loading=%t profile=%t)",
		user, s.IsAuthenticated, s.IsLoading, s.Profile != nil,
	)
}

// newSession is the process-start state: empty fields, rehydration pending
func newSession() Session {
	return Session{IsLoading: true}
}

// Pure transition functions. Each returns a new Session value and never
// touches storage; the Store layers persistence and notification on top.

func applySetAuth(s Session, c Credentials) Session {
	// A different account re-using the same storage key must not inherit the
	// previous account's cached profile. Same-user re-login keeps it.
	if s.Profile != nil && s.User != nil && s.User.UserID != c.UserID {
		s.Profile = nil
	}

	s.AccessToken = c.AccessToken
	s.RefreshToken = c.RefreshToken
	s.User = &AuthUser{UserID: c.UserID, Email: c.Email}
	s.IsAuthenticated = true
	return s
}

func applySetProfile(s Session, p *UserProfile) Session {
	s.Profile = p
	return s
}

func applyUpdateAccessToken(s Session, token string) Session {
	s.AccessToken = token
	return s
}

func applyLogout(s Session) Session {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.User = nil
	s.Profile = nil
	s.IsAuthenticated = false
	return s
}

func applyLoading(s Session, loading bool) Session {
	s.IsLoading = loading
	return s
}
