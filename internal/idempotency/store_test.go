package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BeginLookupComplete(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	_, err := s.Lookup(ctx, "k1", "h1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Begin(ctx, "k1", "h1"))

	_, err = s.Lookup(ctx, "k1", "h1")
	require.ErrorIs(t, err, ErrInProgress)

	require.ErrorIs(t, s.Begin(ctx, "k1", "h1"), ErrInProgress)
	require.ErrorIs(t, s.Begin(ctx, "k1", "other-hash"), ErrHashMismatch)

	s.Complete(ctx, Record{Key: "k1", RequestHash: "h1", Status: 201, Body: []byte(`{"ok":true}`), ContentType: "application/json"})

	rec, err := s.Lookup(ctx, "k1", "h1")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)
	assert.JSONEq(t, `{"ok":true}`, string(rec.Body))

	_, err = s.Lookup(ctx, "k1", "other-hash")
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestStore_ForgetAllowsRetry(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx, "k1", "h1"))
	s.Forget(ctx, "k1")
	require.NoError(t, s.Begin(ctx, "k1", "h1"))
}

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	s.Complete(ctx, Record{Key: "k1", RequestHash: "h1", Status: 200})
	time.Sleep(20 * time.Millisecond)

	_, err := s.Lookup(ctx, "k1", "h1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Begin(ctx, "k1", "h1"))
}
