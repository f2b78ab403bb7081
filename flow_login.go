package session

import (
	"context"
	"fmt"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginPayload is the sign-in form state
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// LoginFlow is the sign-in request/response cycle. On success it writes the
// token bundle into the store, shows a transient notice, and schedules the
// home redirect; on failure it surfaces the provider's own message and stays
// put. The submit control is disabled while a request is in flight and
// re-enabled on every outcome.
type LoginFlow struct {
	store    *Store
	client   CredentialClient
	nav      Navigator
	notifier Notifier
	sched    *Scheduler
	cfg      Config
	logger   Logger

	mu       sync.Mutex
	inFlight bool
	cancel   func()
}

// FlowOption customizes flow construction
type FlowOption func(*flowDeps)

type flowDeps struct {
	sched  *Scheduler
	cfg    Config
	logger Logger
}

// WithFlowConfig overrides the default routes and delays
func WithFlowConfig(cfg Config) FlowOption {
	return func(d *flowDeps) {
		if cfg != nil {
			d.cfg = cfg
		}
	}
}

// WithFlowLogger overrides the default logger
func WithFlowLogger(logger Logger) FlowOption {
	return func(d *flowDeps) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFlowScheduler shares a scheduler with the host view
func WithFlowScheduler(sched *Scheduler) FlowOption {
	return func(d *flowDeps) {
		if sched != nil {
			d.sched = sched
		}
	}
}

func newFlowDeps(opts []FlowOption) flowDeps {
	d := flowDeps{
		sched:  NewScheduler(),
		cfg:    NewOptions(),
		logger: defLogger{},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewLoginFlow wires a login flow against the store and provider client
func NewLoginFlow(store *Store, client CredentialClient, nav Navigator, notifier Notifier, opts ...FlowOption) *LoginFlow {
	d := newFlowDeps(opts)
	return &LoginFlow{
		store:    store,
		client:   client,
		nav:      nav,
		notifier: notifier,
		sched:    d.sched,
		cfg:      d.cfg,
		logger:   d.logger,
	}
}

// InFlight reports whether a submit is pending; hosts disable the submit
// control while true.
func (f *LoginFlow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Submit runs the login cycle for the given form state
func (f *LoginFlow) Submit(ctx context.Context, payload LoginPayload) error {
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

	defer func() {
		f.mu.Lock()
		f.inFlight = false
		f.mu.Unlock()
	}()

	creds, err := f.client.Login(ctx, payload.Email, payload.Password)
	if err != nil {
		f.logger.Error("login failed for %s: %v", payload.Email, err)
		f.notifier.Error(ProviderDetail(err, "An error occurred during login"))
		return err
	}

	if err := f.store.SetAuth(ctx, creds); err != nil {
		// state is committed in memory; persistence trouble is not a login failure
		f.logger.Warn("login persisted with write-through error: %v", err)
	}

	f.notifier.Success(fmt.Sprintf("Login successful! Welcome back, %s", creds.Email))

	cancel := f.sched.After(delayDuration(f.cfg.GetLoginRedirectDelay()), func() {
		f.nav.Navigate(f.cfg.GetHomeRoute())
	})

	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()

	return nil
}

// Close cancels a pending home redirect on teardown
func (f *LoginFlow) Close() {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
