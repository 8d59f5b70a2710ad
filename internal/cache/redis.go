package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// Redis is a Store backed by a shared Redis instance, so every replica sees the same
// entries and invalidations.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Namespace is prepended to every key.
	Namespace string
}

// NewRedis connects to Redis and pings it.
func NewRedis(ctx context.Context, opts RedisOptions, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, ttl: ttl, prefix: opts.Namespace}, nil
}

func (r *Redis) Get(ctx context.Context, key string) []byte {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("component", "cache").Str("key", key).Msg("redis get")
		}
		return nil
	}
	return b
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("key", key).Msg("redis set")
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("key", key).Msg("redis del")
	}
}

// DeletePrefix scans for matching keys and deletes them in batches.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) {
	iter := r.client.Scan(ctx, 0, r.prefix+prefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			log.Warn().Err(err).Str("component", "cache").Str("prefix", prefix).Msg("redis del prefix")
		}
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Str("component", "cache").Str("prefix", prefix).Msg("redis scan")
	}
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
