package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultKeyPrefix = "linkledger:"
	opTimeout        = 2 * time.Second
)

func init() {
	Register("redis", newRedisLedger)
}

// redisLedger stores ids in one Redis set per namespace. The set TTL is
// refreshed on every Mark, so it expires TTL after the last write of a run.
type redisLedger struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

func newRedisLedger(cfg ProviderConfig) (Ledger, error) {
	if cfg.RedisAddress == "" {
		return nil, fmt.Errorf("ledger: redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "default"
	}
	return &redisLedger{
		client: client,
		key:    defaultKeyPrefix + namespace,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
	}, nil
}

// Seen treats a Redis failure as unseen; the database stays the source of truth.
func (r *redisLedger) Seen(id int64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ok, err := r.client.SIsMember(ctx, r.key, member(id)).Result()
	if err != nil {
		r.logger.Error().Err(err).Int64("movie_id", id).Msg("redis ledger Seen failed")
		return false
	}
	return ok
}

func (r *redisLedger) Mark(id int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.key, member(id))
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Int64("movie_id", id).Msg("redis ledger Mark failed")
	}
}

func (r *redisLedger) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		r.logger.Error().Err(err).Msg("redis ledger Len failed")
		return 0
	}
	return int(n)
}

func (r *redisLedger) Close() error {
	return r.client.Close()
}
