package otpstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	xerrors "sentra-auth/internal/pkg/errors"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, zap.NewNop()), mr
}

func TestIssueAndVerify(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "a@b.com", ChannelEmail, "123456", 0))

	ok, err := store.Verify(ctx, "a@b.com", ChannelEmail, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Verify(ctx, "a@b.com", ChannelEmail, "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	// repeat verification within the TTL window stays idempotent
	ok, err = store.Verify(ctx, "a@b.com", ChannelEmail, "123456")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIssueRejectsSecondCode(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "a@b.com", ChannelEmail, "123456", 0))

	err := store.Issue(ctx, "a@b.com", ChannelEmail, "999999", 0)
	assert.ErrorIs(t, err, xerrors.ErrCodeAlreadyIssued)

	// first code must not be overwritten
	ok, err := store.Verify(ctx, "a@b.com", ChannelEmail, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	// other channel for the same identifier is independent
	require.NoError(t, store.Issue(ctx, "a@b.com", ChannelPhone, "999999", 0))

	mr.FastForward(DefaultTTL + time.Second)
	assert.NoError(t, store.Issue(ctx, "a@b.com", ChannelEmail, "222222", 0),
		"issuance succeeds again after the TTL elapses")
}

func TestIssueConcurrentExclusivity(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Issue(ctx, "+15550001111", ChannelPhone, "123456", 0)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case xerrors.Is(err, xerrors.ErrCodeAlreadyIssued):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent issue succeeds")
	assert.Equal(t, 1, lost)
}

func TestVerifyExpiredCode(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "a@b.com", ChannelEmail, "123456", time.Minute))
	mr.FastForward(2 * time.Minute)

	ok, err := store.Verify(ctx, "a@b.com", ChannelEmail, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Issue(ctx, "a@b.com", ChannelEmail, "123456", 0))
	require.NoError(t, store.Invalidate(ctx, "a@b.com", ChannelEmail))

	ok, err := store.Verify(ctx, "a@b.com", ChannelEmail, "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	// pair is free for a new code immediately
	assert.NoError(t, store.Issue(ctx, "a@b.com", ChannelEmail, "222222", 0))
}
