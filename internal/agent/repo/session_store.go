package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	errx "github.com/legalvoice-orchestrator/server/internal/core/error"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps turn state as one JSON value per conversation.
type RedisSessionStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionStore(rdb redis.Cmdable, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionStore) sessionKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:state", conversationID)
}

func (r *RedisSessionStore) Load(ctx context.Context, conversationID string) (*model.TurnState, bool, error) {
	key := r.sessionKey(conversationID)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, false, errx.WrapRedis(err)
	}

	var state model.TurnState
	if err := json.Unmarshal(raw, &state); err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to unmarshal session")
		return nil, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return &state, true, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, state *model.TurnState) error {
	if state == nil || state.ConversationID == "" {
		return errors.New("save session: missing conversation id")
	}
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := r.sessionKey(state.ConversationID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, conversationID string) error {
	key := r.sessionKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionStore = (*RedisSessionStore)(nil)
