package txcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"bankledger/pkg/bank"
)

// RedisTier keeps committed transaction records in Redis as JSON.
type RedisTier struct {
	client rueidis.Client
	config RedisConfig
}

// RedisConfig configures the Redis tier.
type RedisConfig struct {
	// Addr is the Redis server address, e.g. "localhost:6379".
	Addr     string
	Username string
	Password string
	// DB is the Redis database number (0-15).
	DB        int
	KeyPrefix string
	// TTL bounds how long a record stays cached. Records are immutable, so
	// the TTL only caps memory use, never correctness.
	TTL          time.Duration
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns sensible Redis tier defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		KeyPrefix:    "tx:",
		TTL:          15 * time.Minute,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisTier connects to Redis and verifies the connection with a ping.
func NewRedisTier(config RedisConfig) (*RedisTier, error) {
	if config.Addr == "" {
		return nil, fmt.Errorf("redis: no address configured")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultRedisConfig().TTL
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{config.Addr},
		Username:         config.Username,
		Password:         config.Password,
		SelectDB:         config.DB,
		ConnWriteTimeout: config.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}

	return &RedisTier{client: client, config: config}, nil
}

func (r *RedisTier) Name() string {
	return "redis"
}

func (r *RedisTier) Get(ctx context.Context, id string) (*bank.Transaction, error) {
	cmd := r.client.B().Get().Key(r.config.KeyPrefix + id).Build()
	resp := r.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, bank.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	data, err := resp.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("redis get: failed to read response: %w", err)
	}

	var t bank.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("redis get: failed to unmarshal: %w", err)
	}
	return &t, nil
}

func (r *RedisTier) Put(ctx context.Context, t *bank.Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("redis put: failed to marshal: %w", err)
	}

	cmd := r.client.B().Set().Key(r.config.KeyPrefix + t.ID).Value(string(data)).Ex(r.config.TTL).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (r *RedisTier) Close() {
	r.client.Close()
}
