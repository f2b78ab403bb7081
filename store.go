package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// Store holds the canonical Session and is the single source of truth for
// every other component. It is an explicit, injected handle: construct one at
// process start, Hydrate it, pass it by reference, and Close it on exit.
//
// Every mutation is applied as a whole-record replacement, written through to
// the Storage backend under a fixed key, and then broadcast to subscribers.
type Store struct {
	mu      sync.Mutex
	session Session

	storage Storage
	key     string
	logger  Logger

	hydrated bool
	closed   bool

	nextSubID int
	subs      map[int]func(Session)

	Debug bool
}

// StoreOption customizes Store construction
type StoreOption func(*Store)

// WithStoreLogger overrides the default logger
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStorageKey overrides the persisted record key
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// NewStore creates a Store backed by the given Storage. The Session starts at
// its zero state with IsLoading true; call Hydrate before making any
// authentication decision.
func NewStore(storage Storage, opts ...StoreOption) *Store {
	s := &Store{
		session: newSession(),
		storage: storage,
		key:     DefaultStorageKey,
		logger:  defLogger{},
		subs:    map[int]func(Session){},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Hydrate reads the persisted record back into memory. The record is applied
// all or nothing: an absent or malformed record leaves defaults in place.
// Either way IsLoading flips to false exactly once and subscribers observe
// the settled record in the same notification.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	s.hydrated = true

	raw, err := s.storage.Get(ctx, s.key)
	switch {
	case err == nil:
		var restored Session
		if uerr := json.Unmarshal(raw, &restored); uerr != nil {
			s.logger.Warn("discarding malformed session record under %s: %v", s.key, uerr)
		} else {
			restored.IsLoading = s.session.IsLoading
			s.session = restored
		}
	case errors.Is(err, ErrNoRecord):
		s.logger.Debug("no persisted session under %s, starting fresh", s.key)
	default:
		s.logger.Error("session rehydration read failed for %s: %v", s.key, err)
	}

	s.session = applyLoading(s.session, false)
	snapshot := s.session
	subs := s.subscribers()
	s.mu.Unlock()

	s.notify(subs, snapshot)
	return nil
}

// Close drops every subscriber; mutations after Close still commit and
// persist but notify nobody.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = map[int]func(Session){}
}

// Current returns a copy of the session record
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Subscribe registers a change listener and returns its unsubscribe func.
// Listeners are invoked after every committed mutation, including the
// hydration settle, with a copy of the new record.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetAuth overwrites the identity fields from a login token bundle and marks
// the session authenticated. Token shape is not validated here; a malformed
// token simply fails later at the provider. A cached profile survives unless
// the user id changed (see DESIGN notes on multi-account storage keys).
func (s *Store) SetAuth(ctx context.Context, creds Credentials) error {
	return s.commit(ctx, func(cur Session) Session {
		return applySetAuth(cur, creds)
	})
}

// SetProfile overwrites the cached profile wholesale; there is no merge
func (s *Store) SetProfile(ctx context.Context, profile *UserProfile) error {
	return s.commit(ctx, func(cur Session) Session {
		return applySetProfile(cur, profile)
	})
}

// UpdateAccessToken replaces only the access token, leaving the refresh
// token, user, and authenticated flag untouched. Reserved for a silent
// refresh flow; nothing in the credential flows calls it yet.
func (s *Store) UpdateAccessToken(ctx context.Context, token string) error {
	return s.commit(ctx, func(cur Session) Session {
		return applyUpdateAccessToken(cur, token)
	})
}

// Logout clears tokens, user, and profile and drops the authenticated flag.
// IsLoading is untouched: logout ends an identity, not the process.
func (s *Store) Logout(ctx context.Context) error {
	return s.commit(ctx, applyLogout)
}

// Dump renders the current record for debugging when Debug is set
func (s *Store) Dump() string {
	if !s.Debug {
		return ""
	}
	return print.MaybePrettyJSON(s.Current())
}

// commit applies a pure transition, persists the result, and notifies. The
// in-memory record is committed even when the write-through fails so the
// running session never diverges from what the user just did; the error is
// still returned for the caller to surface.
func (s *Store) commit(ctx context.Context, transition func(Session) Session) error {
	s.mu.Lock()
	s.session = transition(s.session)
	snapshot := s.session
	subs := s.subscribers()
	s.mu.Unlock()

	var persistErr error
	raw, err := json.Marshal(snapshot)
	if err != nil {
		persistErr = goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session record")
	} else if err := s.storage.Set(ctx, s.key, raw); err != nil {
		persistErr = goerrors.Wrap(err, goerrors.CategoryOperation, "failed to persist session record")
	}

	if persistErr != nil {
		s.logger.Error("session write-through failed for %s: %v", s.key, persistErr)
	}

	s.notify(subs, snapshot)
	return persistErr
}

func (s *Store) subscribers() []func(Session) {
	out := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func (s *Store) notify(subs []func(Session), snapshot Session) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
