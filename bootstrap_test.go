package session_test

import (
	"context"
	"testing"
	"time"

	session "github.com/kentecode/go-session"
	"github.com/kentecode/go-session/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func authedStore(t *testing.T) *session.Store {
	t.Helper()
	ctx := context.Background()
	store := session.NewStore(storage.NewMemory())
	require.NoError(t, store.Hydrate(ctx))
	require.NoError(t, store.SetAuth(ctx, testCredentials()))
	return store
}

func TestBootstrapFetchesAndCachesProfile(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").
		Return(&session.UserProfile{UserID: "u1", FirstName: "Ama"}, nil).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	require.Eventually(t, func() bool {
		return store.Current().Profile != nil
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "Ama", store.Current().Profile.FirstName)
	assert.Empty(t, nav.Routes())
	client.AssertExpectations(t)
}

func TestBootstrapIdempotentWithCachedProfile(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	require.NoError(t, store.SetProfile(ctx, &session.UserProfile{UserID: "u1"}))

	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}
	client := new(MockProfileClient)

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	// re-run the triggering effect a few times
	require.NoError(t, store.UpdateAccessToken(ctx, "t1"))
	require.NoError(t, store.UpdateAccessToken(ctx, "t1"))

	time.Sleep(20 * time.Millisecond)
	client.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
}

func TestBootstrapNoopWhenUnauthenticated(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(storage.NewMemory())
	require.NoError(t, store.Hydrate(ctx))

	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}
	client := new(MockProfileClient)

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	time.Sleep(20 * time.Millisecond)
	client.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)
}

func TestBootstrapNoopWhileHydrating(t *testing.T) {
	ctx := context.Background()
	medium := storage.NewMemory()

	seed := session.NewStore(medium)
	require.NoError(t, seed.Hydrate(ctx))
	require.NoError(t, seed.SetAuth(ctx, testCredentials()))

	store := session.NewStore(medium)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").
		Return(&session.UserProfile{UserID: "u1"}, nil).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	// mounted before hydration: nothing fetched yet
	time.Sleep(20 * time.Millisecond)
	client.AssertNotCalled(t, "FetchProfile", mock.Anything, mock.Anything)

	require.NoError(t, store.Hydrate(ctx))

	require.Eventually(t, func() bool {
		return store.Current().Profile != nil
	}, time.Second, 5*time.Millisecond)
	client.AssertExpectations(t)
}

func TestBootstrapRoutesToOnboardingWhenProfileAbsent(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").Return(nil, nil).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	require.Eventually(t, func() bool {
		return len(nav.Routes()) > 0
	}, time.Second, 5*time.Millisecond)

	// navigation scheduled exactly once, profile stays absent
	assert.Equal(t, []string{session.DefaultOnboardingRoute}, nav.Routes())
	assert.Nil(t, store.Current().Profile)
	assert.NotEmpty(t, notifier.Errors())
	client.AssertExpectations(t)
}

func TestBootstrapRoutesToOnboardingOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").Return(nil, assert.AnError).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	require.Eventually(t, func() bool {
		return len(nav.Routes()) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{session.DefaultOnboardingRoute}, nav.Routes())
	assert.NotEmpty(t, notifier.Errors())
	client.AssertExpectations(t)
}

func TestBootstrapSingleFetchAcrossNotifications(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	release := make(chan struct{})
	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").
		Run(func(mock.Arguments) { <-release }).
		Return(&session.UserProfile{UserID: "u1"}, nil).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(quickOptions()))
	defer b.Close()
	b.Mount(ctx)

	// store updates during the in-flight fetch must not re-trigger it
	require.NoError(t, store.UpdateAccessToken(ctx, "t1"))
	require.NoError(t, store.UpdateAccessToken(ctx, "t1"))
	close(release)

	require.Eventually(t, func() bool {
		return store.Current().Profile != nil
	}, time.Second, 5*time.Millisecond)
	client.AssertExpectations(t)
}

func TestBootstrapCloseDuringInFlightFetch(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	opts := quickOptions()
	opts.OnboardingRedirectDelay = 100

	release := make(chan struct{})
	started := make(chan struct{})
	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil, assert.AnError).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(opts))
	b.Mount(ctx)

	// unmount while the fetch is still pending, then let it fail
	<-started
	b.Close()
	close(release)

	time.Sleep(250 * time.Millisecond)
	assert.Empty(t, nav.Routes())
	assert.Empty(t, notifier.Errors())
}

func TestBootstrapCloseCancelsPendingNavigation(t *testing.T) {
	ctx := context.Background()
	store := authedStore(t)
	nav := &recordingNavigator{}
	notifier := &recordingNotifier{}

	opts := quickOptions()
	opts.OnboardingRedirectDelay = 250

	client := new(MockProfileClient)
	client.On("FetchProfile", mock.Anything, "t1").Return(nil, nil).Once()

	b := session.NewBootstrap(store, client, nav, notifier,
		session.WithBootstrapConfig(opts))
	b.Mount(ctx)

	require.Eventually(t, func() bool {
		return len(notifier.Errors()) > 0
	}, time.Second, 5*time.Millisecond)

	// unmount before the delay fires
	b.Close()

	time.Sleep(400 * time.Millisecond)
	assert.Empty(t, nav.Routes())
}
