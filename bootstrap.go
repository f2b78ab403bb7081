package session

import (
	"context"
	"sync"
)

// Bootstrap fetches the extended profile once per authenticated session and
// caches it in the store. The effect is keyed on (authenticated, token,
// profile): it is a no-op until the store is settled and authenticated, and
// again once a profile is cached. When the identity exists but has no profile
// record, or when the fetch fails outright, the user is noticed and routed to
// onboarding after a short delay; the two cases read the same to the user and
// differ only in the log.
type Bootstrap struct {
	store    *Store
	client   ProfileClient
	nav      Navigator
	notifier Notifier
	sched    *Scheduler
	cfg      Config
	logger   Logger

	sharedSched bool

	mu       sync.Mutex
	inFlight bool
	settled  bool
	closed   bool
	unsub    func()
	cancel   func()
}

// BootstrapOption customizes Bootstrap construction
type BootstrapOption func(*Bootstrap)

// WithBootstrapConfig overrides the default routes and delays
func WithBootstrapConfig(cfg Config) BootstrapOption {
	return func(b *Bootstrap) {
		if cfg != nil {
			b.cfg = cfg
		}
	}
}

// WithBootstrapLogger overrides the default logger
func WithBootstrapLogger(logger Logger) BootstrapOption {
	return func(b *Bootstrap) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBootstrapScheduler shares a scheduler with the host; the default is a
// private one cancelled on Close.
func WithBootstrapScheduler(sched *Scheduler) BootstrapOption {
	return func(b *Bootstrap) {
		if sched != nil {
			b.sched = sched
			b.sharedSched = true
		}
	}
}

// NewBootstrap wires the profile bootstrap against a store and client
func NewBootstrap(store *Store, client ProfileClient, nav Navigator, notifier Notifier, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		store:    store,
		client:   client,
		nav:      nav,
		notifier: notifier,
		sched:    NewScheduler(),
		cfg:      NewOptions(),
		logger:   defLogger{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Mount subscribes to the store and evaluates the current snapshot. ctx
// bounds every fetch issued for this mount.
func (b *Bootstrap) Mount(ctx context.Context) {
	b.unsub = b.store.Subscribe(func(s Session) {
		b.evaluate(ctx, s)
	})
	b.evaluate(ctx, b.store.Current())
}

// Close unsubscribes and cancels any pending onboarding navigation. A fetch
// still in flight when Close runs resolves without notifying or scheduling
// anything; an unmounted view never navigates.
func (b *Bootstrap) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}

	b.mu.Lock()
	b.closed = true
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if !b.sharedSched {
		b.sched.Close()
	}
}

func (b *Bootstrap) evaluate(ctx context.Context, s Session) {
	if !s.Ready() || !s.IsAuthenticated || s.AccessToken == "" {
		return
	}
	if s.Profile != nil {
		return
	}

	b.mu.Lock()
	// the in-flight latch stops store updates during a fetch (SetProfile
	// itself notifies) from re-triggering the effect; settled stops a session
	// already routed to onboarding from fetching again until remount
	if b.inFlight || b.settled || b.closed {
		b.mu.Unlock()
		return
	}
	b.inFlight = true
	b.mu.Unlock()

	go b.fetch(ctx, s.AccessToken)
}

func (b *Bootstrap) fetch(ctx context.Context, accessToken string) {
	defer func() {
		b.mu.Lock()
		b.inFlight = false
		b.mu.Unlock()
	}()

	profile, err := b.client.FetchProfile(ctx, accessToken)

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return
	}

	if err != nil {
		b.logger.Error("profile fetch failed: %v", err)
		b.notifier.Error("Could not load your profile. Let's finish setting up your account.")
		b.routeToOnboarding()
		return
	}

	if profile == nil {
		b.logger.Info("authenticated identity has no profile record, routing to onboarding")
		b.notifier.Error("No profile found for your account. Let's finish setting up your account.")
		b.routeToOnboarding()
		return
	}

	if err := b.store.SetProfile(ctx, profile); err != nil {
		b.logger.Error("profile cache write failed: %v", err)
	}
}

func (b *Bootstrap) routeToOnboarding() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.settled = true
	b.mu.Unlock()

	delay := delayDuration(b.cfg.GetOnboardingRedirectDelay())
	cancel := b.sched.After(delay, func() {
		b.nav.Navigate(b.cfg.GetOnboardingRoute())
	})

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return
	}
	b.cancel = cancel
	b.mu.Unlock()
}
