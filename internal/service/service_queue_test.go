package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
)

func newTestQueue(t *testing.T, kv *fakeKV, policy QueuePolicy) (*queueService, *time.Time) {
	t.Helper()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	clock := &now

	q := NewActionQueue(kv, policy, logger.Nop()).(*queueService)
	q.now = func() time.Time { return *clock }

	return q, clock
}

func TestQueueService_Enqueue_FIFOOrder(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{})
	ctx := context.Background()

	idA, err := q.Enqueue(ctx, "CREATE_BOOKING", "/api/bookings", "POST", json.RawMessage(`{"a":1}`), 0)
	require.NoError(t, err)
	idB, err := q.Enqueue(ctx, "UPDATE_BOOKING", "/api/bookings/1", "PUT", json.RawMessage(`{"b":2}`), 0)
	require.NoError(t, err)

	pending := q.Pending(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, idA, pending[0].ID)
	assert.Equal(t, idB, pending[1].ID)
	assert.Equal(t, 0, pending[0].RetryCount)
}

func TestQueueService_Enqueue_UnsupportedMethod(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{})

	_, err := q.Enqueue(context.Background(), "X", "/x", "PATCH", nil, 0)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Zero(t, q.Len())
}

func TestQueueService_Enqueue_NormalizesMethodCase(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{})

	_, err := q.Enqueue(context.Background(), "X", "/x", "post", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "POST", q.Pending(context.Background())[0].Method)
}

func TestQueueService_Enqueue_DefaultMaxRetries(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{DefaultMaxRetries: 5})

	_, err := q.Enqueue(context.Background(), "X", "/x", "POST", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Pending(context.Background())[0].MaxRetries)
}

func TestQueueService_Remove_Idempotent(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{})
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "X", "/x", "POST", nil, 0)
	require.NoError(t, err)

	require.NoError(t, q.Remove(ctx, id))
	require.NoError(t, q.Remove(ctx, id))
	require.NoError(t, q.Remove(ctx, "no-such-id"))
	assert.Zero(t, q.Len())
}

func TestQueueService_RecordFailure_EnforcesRetryBound(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{})
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "X", "/x", "POST", nil, 2)
	require.NoError(t, err)

	cause := errors.New("connection refused")

	dropped, err := q.RecordFailure(ctx, id, cause)
	require.NoError(t, err)
	assert.False(t, dropped)

	pending := q.Pending(ctx)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, "connection refused", pending[0].LastError)

	// Second failure reaches maxRetries: the action is dropped in the same
	// step, so retryCount never exceeds the bound.
	dropped, err = q.RecordFailure(ctx, id, cause)
	require.NoError(t, err)
	assert.True(t, dropped)
	assert.Zero(t, q.Len())
}

func TestQueueService_RecordFailure_UnknownID(t *testing.T) {
	q, _ := newTestQueue(t, newFakeKV(), QueuePolicy{})

	dropped, err := q.RecordFailure(context.Background(), "ghost", errors.New("x"))
	require.NoError(t, err)
	assert.False(t, dropped)
}

func TestQueueService_RecordFailure_StampsBackoff(t *testing.T) {
	policy := QueuePolicy{BackoffBase: time.Second, BackoffCap: time.Minute}
	q, clock := newTestQueue(t, newFakeKV(), policy)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "X", "/x", "POST", nil, 5)
	require.NoError(t, err)

	_, err = q.RecordFailure(ctx, id, errors.New("timeout"))
	require.NoError(t, err)

	got := q.Pending(ctx)[0]
	assert.True(t, got.NextEligibleAt.After(*clock), "failed action is deferred")
	assert.False(t, got.Eligible(*clock))
	assert.True(t, got.Eligible(clock.Add(2*time.Minute)))
}

func TestQueueService_RecordFailure_ZeroBaseDisablesBackoff(t *testing.T) {
	q, clock := newTestQueue(t, newFakeKV(), QueuePolicy{})
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "X", "/x", "POST", nil, 5)
	require.NoError(t, err)

	_, err = q.RecordFailure(ctx, id, errors.New("timeout"))
	require.NoError(t, err)

	assert.True(t, q.Pending(ctx)[0].Eligible(*clock))
}

func TestQueueService_ReloadsPersistedOrder(t *testing.T) {
	kv := newFakeKV()
	first, _ := newTestQueue(t, kv, QueuePolicy{})
	ctx := context.Background()

	idA, err := first.Enqueue(ctx, "A", "/a", "POST", nil, 0)
	require.NoError(t, err)
	idB, err := first.Enqueue(ctx, "B", "/b", "DELETE", nil, 0)
	require.NoError(t, err)

	// A restart reloads the persisted queue in submission order.
	second, _ := newTestQueue(t, kv, QueuePolicy{})
	pending := second.Pending(ctx)
	require.Len(t, pending, 2)
	assert.Equal(t, idA, pending[0].ID)
	assert.Equal(t, idB, pending[1].ID)
}

func TestQueueService_CorruptBlobStartsEmpty(t *testing.T) {
	kv := newFakeKV()
	kv.blobs["offline_queue"] = []byte("{not json")

	q, _ := newTestQueue(t, kv, QueuePolicy{})
	assert.Zero(t, q.Len())
}

func TestQueueService_PersistFailure_MemoryStaysAuthoritative(t *testing.T) {
	kv := newFakeKV()
	kv.failPuts = true
	q, _ := newTestQueue(t, kv, QueuePolicy{})

	_, err := q.Enqueue(context.Background(), "X", "/x", "POST", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
}
