package session_test

import (
	"context"
	"fmt"
	"sync"

	session "github.com/kentecode/go-session"
	"github.com/stretchr/testify/mock"
)

// MockCredentialClient implements session.CredentialClient
type MockCredentialClient struct {
	mock.Mock
}

func (m *MockCredentialClient) Login(ctx context.Context, email, password string) (session.Credentials, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.Credentials), args.Error(1)
}

func (m *MockCredentialClient) Register(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockCredentialClient) VerifyOTP(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

// MockProfileClient implements session.ProfileClient
type MockProfileClient struct {
	mock.Mock
}

func (m *MockProfileClient) FetchProfile(ctx context.Context, accessToken string) (*session.UserProfile, error) {
	args := m.Called(ctx, accessToken)
	profile, _ := args.Get(0).(*session.UserProfile)
	return profile, args.Error(1)
}

// recordingNavigator captures navigation requests
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.routes))
	copy(out, n.routes)
	return out
}

// recordingNotifier captures user-visible notices
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.successes))
	copy(out, n.successes)
	return out
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.errors))
	copy(out, n.errors)
	return out
}

// capturingLogger renders log calls the way defLogger would
type capturingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *capturingLogger) record(format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *capturingLogger) Debug(format string, args ...any) { l.record(format, args) }
func (l *capturingLogger) Info(format string, args ...any)  { l.record(format, args) }
func (l *capturingLogger) Warn(format string, args ...any)  { l.record(format, args) }
func (l *capturingLogger) Error(format string, args ...any) { l.record(format, args) }

func (l *capturingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// failingStorage errors on every operation
type failingStorage struct {
	err error
}

func (f failingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.err }

func (f failingStorage) Set(context.Context, string, []byte) error { return f.err }

func (f failingStorage) Delete(context.Context, string) error { return f.err }

// quickOptions returns a config with inline delays so tests never sleep
func quickOptions() session.Options {
	opts := session.NewOptions()
	opts.LoginRedirectDelay = 0
	opts.RegisterStepDelay = 0
	opts.VerifyRedirectDelay = 0
	opts.OnboardingRedirectDelay = 0
	return opts
}
