package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	errx "github.com/legalvoice-orchestrator/server/internal/core/error"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type RedisAPICallLogRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisAPICallLogRepository(rdb redis.Cmdable, ttl time.Duration) *RedisAPICallLogRepository {
	return &RedisAPICallLogRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisAPICallLogRepository) logKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:api_calls", conversationID)
}

func (r *RedisAPICallLogRepository) Append(ctx context.Context, conversationID string, call model.APICall) error {
	b, err := json.Marshal(call)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to marshal api call")
		return fmt.Errorf("marshal api call: %w", err)
	}
	key := r.logKey(conversationID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push api call to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on api call log key")
		}
	}
	return nil
}

func (r *RedisAPICallLogRepository) List(ctx context.Context, conversationID string) ([]model.APICall, error) {
	key := r.logKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.APICall{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load api call log from redis")
		return nil, errx.WrapRedis(err)
	}

	calls := make([]model.APICall, 0, len(rows))
	for i, s := range rows {
		var c model.APICall
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			logx.Error().Err(err).Str("conversationID", conversationID).Int("index", i).Msg("failed to unmarshal api call")
			return nil, fmt.Errorf("unmarshal api call at index %d: %w", i, err)
		}
		calls = append(calls, c)
	}
	return calls, nil
}

func (r *RedisAPICallLogRepository) Clear(ctx context.Context, conversationID string) error {
	key := r.logKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete api call log from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.APICallLogRepository = (*RedisAPICallLogRepository)(nil)
