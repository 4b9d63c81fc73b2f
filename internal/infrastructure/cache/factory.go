package cache

import (
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks the Redis store when a client is available and
// falls back to process memory otherwise.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		logger.Warn("Redis disabled, idempotency keys are kept in memory and not shared between instances")
		return NewInMemoryIdempotencyStore()
	}
	logger.Info("using Redis idempotency store")
	return NewRedisIdempotencyStore(client, "")
}
