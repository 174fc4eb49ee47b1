package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/niksmo/cart-api/internal/adapter"
	"github.com/niksmo/cart-api/internal/core/domain"
	"github.com/niksmo/cart-api/pkg/retry"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("not found")

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// A RedisConfig used for setup [RedisKV].
//
// URL takes precedence over the other connection fields.
type RedisConfig struct {
	URL         string
	Addr        string
	Username    string
	Password    string
	DB          int
	TLS         bool
	TLSCA       string
	TLSCert     string
	TLSKey      string
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

func (c RedisConfig) options() (*redis.Options, error) {
	var opts *redis.Options

	if c.URL != "" {
		parsed, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     c.Addr,
			Username: c.Username,
			Password: c.Password,
			DB:       c.DB,
		}
	}

	if c.TLS && opts.TLSConfig == nil {
		tlsConfig, err := adapter.MakeTLSConfig(c.TLSCA, c.TLSCert, c.TLSKey)
		if err != nil {
			return nil, err
		}
		opts.TLSConfig = tlsConfig
	}

	if c.DialTimeout != 0 {
		opts.DialTimeout = c.DialTimeout
	}
	if c.IOTimeout != 0 {
		opts.ReadTimeout = c.IOTimeout
		opts.WriteTimeout = c.IOTimeout
	}

	// retries are driven by storeRetryConfig
	opts.MaxRetries = -1
	return opts, nil
}

// A RedisKV is the key-value store holding carts.
//
// Connectivity failures are returned wrapped with [domain.ErrStoreUnavailable].
type RedisKV struct {
	cl       redisClient
	retryCfg retry.RetryConfig
}

func NewRedisKV(cfg RedisConfig) (RedisKV, error) {
	const op = "NewRedisKV"

	opts, err := cfg.options()
	if err != nil {
		return RedisKV{}, fmt.Errorf("%s: %w", op, err)
	}
	return newRedisKV(redis.NewClient(opts)), nil
}

func newRedisKV(cl redisClient) RedisKV {
	return RedisKV{cl: cl, retryCfg: storeRetryConfig()}
}

func storeRetryConfig() retry.RetryConfig {
	return retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.ExponentialBackoff(50 * time.Millisecond),
		ShouldRetry: isTransient,
	}
}

func isTransient(err error) bool {
	if errors.Is(err, redis.Nil) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// Get returns the value stored under key or [ErrNotFound].
func (kv RedisKV) Get(ctx context.Context, key string) (string, error) {
	const op = "RedisKV.Get"

	v, err := retry.DoWithResult(ctx, kv.retryCfg, func() (string, error) {
		return kv.cl.Get(ctx, key).Result()
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", unavailable(op, err)
	}
	return v, nil
}

// Set stores value under key, the key expires after ttl.
func (kv RedisKV) Set(
	ctx context.Context, key, value string, ttl time.Duration,
) error {
	const op = "RedisKV.Set"

	err := retry.Do(ctx, kv.retryCfg, func() error {
		return kv.cl.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return unavailable(op, err)
	}
	return nil
}

// Del removes key. Removing an absent key is not an error.
func (kv RedisKV) Del(ctx context.Context, key string) error {
	const op = "RedisKV.Del"

	err := retry.Do(ctx, kv.retryCfg, func() error {
		return kv.cl.Del(ctx, key).Err()
	})
	if err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (kv RedisKV) Ping(ctx context.Context) error {
	const op = "RedisKV.Ping"
	if err := kv.cl.Ping(ctx).Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func (kv RedisKV) Close() {
	const op = "RedisKV.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")

	if err := kv.cl.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
