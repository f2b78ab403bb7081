package session

import (
	"context"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterStep is the local two-step registration state machine
type RegisterStep int

const (
	// StepRegister collects email and password
	StepRegister RegisterStep = iota
	// StepVerify collects the emailed code, bound to the registered email
	StepVerify
)

func (s RegisterStep) String() string {
	if s == StepVerify {
		return "verify"
	}
	return "register"
}

// RegisterPayload is the sign-up form state
type RegisterPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// RegisterFlow drives the registration and OTP-verification cycles as one
// local state machine: a successful registration carries the email into the
// verify step after a short delay, and a successful verification routes to
// sign-in. The flow never touches the Store; no token exists until the user
// signs in. Each step's submit control is disabled while its request is in
// flight and re-enabled on every outcome.
type RegisterFlow struct {
	client   CredentialClient
	nav      Navigator
	notifier Notifier
	sched    *Scheduler
	cfg      Config
	logger   Logger

	mu       sync.Mutex
	step     RegisterStep
	email    string
	inFlight bool
	cancel   func()
}

// NewRegisterFlow wires a registration flow against the provider client
func NewRegisterFlow(client CredentialClient, nav Navigator, notifier Notifier, opts ...FlowOption) *RegisterFlow {
	d := newFlowDeps(opts)
	return &RegisterFlow{
		client:   client,
		nav:      nav,
		notifier: notifier,
		sched:    d.sched,
		cfg:      d.cfg,
		logger:   d.logger,
	}
}

// Step returns the current step of the local state machine
func (f *RegisterFlow) Step() RegisterStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Email returns the address carried from the registration step
func (f *RegisterFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// InFlight reports whether a submit is pending for either step
func (f *RegisterFlow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit runs the registration cycle. On success the machine transitions to
// the verify step after the configured delay, carrying the email forward.
func (f *RegisterFlow) Submit(ctx context.Context, payload RegisterPayload) error {
	if err := payload.Validate(); err != nil {
		f.notifier.Error(err.Error())
		return err
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return ErrRequestInFlight
	}
	f.inFlight = true
	f.mu.Unlock()

	defer f.clearInFlight()

	if err := f.client.Register(ctx, payload.Email, payload.Password); err != nil {
		f.logger.Error("registration failed for %s: %v", payload.Email, err)
		f.notifier.Error(ProviderDetail(err, "An error occurred during registration"))
		return err
	}

	f.notifier.Success("Registration successful! Check your email for the verification code.")

	cancel := f.sched.After(delayDuration(f.cfg.GetRegisterStepDelay()), func() {
		f.mu.Lock()
		f.step = StepVerify
		f.email = payload.Email
		f.mu.Unlock()
	})

	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	return nil
}

// Back returns from the verify step to a blank registration step. Only local
// state resets; nothing is sent to the provider.
func (f *RegisterFlow) Back() {
	f.mu.Lock()
	f.step = StepRegister
	f.email = ""
	f.mu.Unlock()
}

// Close cancels any pending step transition or redirect on teardown
func (f *RegisterFlow) Close() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (f *RegisterFlow) clearInFlight() {
	f.mu.Lock()
	f.inFlight = false
	f.mu.Unlock()
}
