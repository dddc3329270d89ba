package repo

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(id string) *model.TurnState {
	s := model.NewTurnState(id, "+15550100")
	s.Messages = append(s.Messages,
		schema.UserMessage("How did we do this year?"),
		schema.AssistantMessage("You closed 12 cases.", nil),
	)
	s.Inner.IterationCount = 2
	s.Inner.AnalyticsTimeRange = &model.DateRange{From: "2026-01-01", To: "2026-12-31"}
	return s
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewRedisSessionStore(rdb, 30*time.Minute)
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, sampleState("call-1")))
	assert.Equal(t, 30*time.Minute, mr.TTL("conversation:call-1:state"))

	got, ok, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "+15550100", got.CallerPhone)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, schema.Assistant, got.Messages[1].Role)
	assert.Equal(t, 2, got.Inner.IterationCount)
	assert.Equal(t, "2026-12-31", got.Inner.AnalyticsTimeRange.To)

	require.NoError(t, store.Delete(ctx, "call-1"))
	_, ok, err = store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStoreRejectsAnonymousState(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewRedisSessionStore(rdb, 0)
	assert.Error(t, store.Save(context.Background(), model.NewTurnState("", "")))
}

func TestMemorySessionStoreIsolatesCopies(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()

	state := sampleState("call-1")
	require.NoError(t, store.Save(ctx, state))
	state.Messages = nil

	got, ok, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Messages, 2)

	got.Inner.IterationCount = 99
	again, _, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Inner.IterationCount)
}

func TestMemorySessionStoreExpires(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState("call-1")))
	now = now.Add(59 * time.Second)
	_, ok, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, err = store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySessionStoreDelete(t *testing.T) {
	store := NewMemorySessionStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState("call-1")))
	require.NoError(t, store.Delete(ctx, "call-1"))
	_, ok, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryAPICallLog(t *testing.T) {
	log := NewMemoryAPICallLogRepository(0)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "call-1", model.APICall{Status: 200}))
	require.NoError(t, log.Append(ctx, "call-1", model.APICall{Status: 502}))
	require.NoError(t, log.Append(ctx, "call-2", model.APICall{Status: 200}))

	calls, err := log.List(ctx, "call-1")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, 502, calls[1].Status)

	require.NoError(t, log.Clear(ctx, "call-1"))
	calls, err = log.List(ctx, "call-1")
	require.NoError(t, err)
	assert.Empty(t, calls)

	calls, err = log.List(ctx, "call-2")
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

func TestMemoryAPICallLogExpires(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	log := NewMemoryAPICallLogRepository(time.Minute)
	log.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, "call-1", model.APICall{Status: 200}))
	now = now.Add(30 * time.Second)
	require.NoError(t, log.Append(ctx, "call-1", model.APICall{Status: 502}))

	// the second append extends the log
	now = now.Add(59 * time.Second)
	calls, err := log.List(ctx, "call-1")
	require.NoError(t, err)
	assert.Len(t, calls, 2)

	now = now.Add(time.Second)
	calls, err = log.List(ctx, "call-1")
	require.NoError(t, err)
	assert.Empty(t, calls)

	// expired logs of other conversations are swept on append
	require.NoError(t, log.Append(ctx, "call-2", model.APICall{Status: 200}))
	now = now.Add(time.Minute)
	require.NoError(t, log.Append(ctx, "call-3", model.APICall{Status: 200}))
	assert.NotContains(t, log.logs, "call-2")
	assert.Contains(t, log.logs, "call-3")
}
