package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	maintnotifications "github.com/redis/go-redis/v9/maintnotifications"
)

type RedisOption func(*redis.Options)

func WithDialTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

func WithDB(db int) RedisOption {
	return func(o *redis.Options) { o.DB = db }
}

// RedisSource reads the dataset document stored as a plain string value.
type RedisSource struct {
	rdb *redis.Client
	key string
}

func NewRedisSource(ctx context.Context, addr, key string, opts ...RedisOption) (*RedisSource, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	if key == "" {
		return nil, errors.New("redis key is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     4,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Second,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSource{rdb: rdb, key: key}, nil
}

func (s *RedisSource) Kind() string { return "redis" }

func (s *RedisSource) Name() string { return "redis key " + s.key }

func (s *RedisSource) Fetch(ctx context.Context) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("key %q does not exist", s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %q: %w", s.key, err)
	}
	return b, nil
}

func (s *RedisSource) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Store validates raw as a dataset document and writes it to the key.
func (s *RedisSource) Store(ctx context.Context, raw []byte) (Fingerprint, error) {
	if _, err := Decode(raw); err != nil {
		return 0, fmt.Errorf("refusing to store invalid dataset: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return 0, fmt.Errorf("redis SET %q: %w", s.key, err)
	}
	return Fingerprint(xxhash.Sum64(raw)), nil
}
