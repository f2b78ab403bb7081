package session

import "sync"

// View is what a guard resolves to for its host view layer
type View int

const (
	// ViewWaiting renders the neutral waiting indicator. It covers both the
	// rehydration window and the moment after an unauthorized redirect has
	// been issued; protected content is never flashed.
	ViewWaiting View = iota
	// ViewContent renders the wrapped protected subtree
	ViewContent
)

func (v View) String() string {
	if v == ViewContent {
		return "content"
	}
	return "waiting"
}

// canActivate is the single authorization predicate shared by every guard
// flavor: the store must be settled, authenticated, and carrying a token.
func canActivate(s Session) bool {
	return s.Ready() && s.IsAuthenticated && s.AccessToken != ""
}

// Guard wraps protected content behind the store's authentication state. It
// subscribes on Mount, re-evaluates on every store notification, and issues
// at most one sign-in redirect per unauthorized transition. While the store
// is still loading no decision is made at all; the observed failure mode this
// prevents is a spurious redirect racing rehydration on reload.
type Guard struct {
	store  *Store
	nav    Navigator
	cfg    Config
	logger Logger

	mu         sync.Mutex
	view       View
	redirected bool
	unsub      func()

	onChange func(View)
}

// GuardOption customizes Guard construction
type GuardOption func(*Guard)

// WithGuardConfig overrides the default routes
func WithGuardConfig(cfg Config) GuardOption {
	return func(g *Guard) {
		if cfg != nil {
			g.cfg = cfg
		}
	}
}

// WithGuardLogger overrides the default logger
func WithGuardLogger(logger Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithViewListener registers a callback invoked whenever the resolved view
// changes. Host view layers use it to swap the waiting indicator for content.
func WithViewListener(fn func(View)) GuardOption {
	return func(g *Guard) {
		g.onChange = fn
	}
}

// NewGuard builds a guard over store that redirects through nav
func NewGuard(store *Store, nav Navigator, opts ...GuardOption) *Guard {
	g := &Guard{
		store:  store,
		nav:    nav,
		cfg:    NewOptions(),
		logger: defLogger{},
		view:   ViewWaiting,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Mount subscribes to the store and evaluates the current snapshot
func (g *Guard) Mount() {
	g.unsub = g.store.Subscribe(g.evaluate)
	g.evaluate(g.store.Current())
}

// View returns what the guard currently resolves to
func (g *Guard) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view
}

// Close unsubscribes from the store; the guard stops re-evaluating
func (g *Guard) Close() {
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
}

func (g *Guard) evaluate(s Session) {
	g.mu.Lock()

	var next View
	var redirect bool

	switch {
	case !s.Ready():
		// rehydration pending, no decision yet
		next = ViewWaiting
	case canActivate(s):
		next = ViewContent
		g.redirected = false
	default:
		next = ViewWaiting
		if !g.redirected {
			g.redirected = true
			redirect = true
		}
	}

	changed := next != g.view
	g.view = next
	onChange := g.onChange
	g.mu.Unlock()

	if redirect {
		g.logger.Debug("guard redirecting unauthenticated session to %s", g.cfg.GetSigninRoute())
		g.nav.Navigate(g.cfg.GetSigninRoute())
	}

	if changed && onChange != nil {
		onChange(next)
	}
}

// NavFrame is the persistent navigation chrome the framed guard flavor wraps
// around protected content.
type NavFrame struct {
	Title string
	Items []NavItem
}

// NavItem is a single entry in the navigation frame
type NavItem struct {
	Label string
	Route string
}

// FramedGuard renders a persistent navigation frame around protected content.
// It shares Guard's authorization predicate verbatim; only the presentation
// envelope differs.
type FramedGuard struct {
	*Guard
	frame NavFrame
}

// NewFramedGuard builds the framed guard flavor
func NewFramedGuard(store *Store, nav Navigator, frame NavFrame, opts ...GuardOption) *FramedGuard {
	return &FramedGuard{
		Guard: NewGuard(store, nav, opts...),
		frame: frame,
	}
}

// ActiveFrame returns the navigation frame while content is visible, nil
// otherwise. The frame never shows around the waiting indicator.
func (f *FramedGuard) ActiveFrame() *NavFrame {
	if f.View() != ViewContent {
		return nil
	}
	frame := f.frame
	return &frame
}
