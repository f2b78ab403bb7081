package storage_test

import (
	"context"
	"testing"

	session "github.com/kentecode/go-session"
	"github.com/kentecode/go-session/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()

	_, err := m.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, session.ErrNoRecord)

	require.NoError(t, m.Set(ctx, "auth-storage", []byte(`{"a":1}`)))

	got, err := m.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, m.Delete(ctx, "auth-storage"))
	_, err = m.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, session.ErrNoRecord)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()

	in := []byte("original")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	// mutating a read result must not corrupt the stored copy
	got[0] = 'Y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestMemoryDeleteMissingKeyIsNoop(t *testing.T) {
	assert.NoError(t, storage.NewMemory().Delete(context.Background(), "never-set"))
}
