package nostrchat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nostr-chat/internal/util"
)

// RedisProfileStore implements ProfileStore using Redis. Expiry is delegated
// to Redis key TTLs, so a re-ingest naturally restarts the window.
type RedisProfileStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisProfileStore creates a Redis-backed profile store from URL
// URL format: redis://[:password@]host:port/db
func NewRedisProfileStore(redisURL string, prefix string, ttl time.Duration) (*RedisProfileStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	// Connection pool settings
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisProfileStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (s *RedisProfileStore) key(pubkey string) string {
	return s.prefix + "profile:" + pubkey
}

func (s *RedisProfileStore) GetOrDefault(ctx context.Context, pubkey string) ProfileInfo {
	data, err := s.client.Get(ctx, s.key(pubkey)).Bytes()
	if err == redis.Nil {
		cacheMissesTotal.Add(1)
		return DefaultProfile(pubkey)
	}
	if err != nil {
		slog.Warn("redis profile get failed", "pubkey", util.ShortID(pubkey), "error", err)
		cacheMissesTotal.Add(1)
		return DefaultProfile(pubkey)
	}

	var profile ProfileInfo
	if err := json.Unmarshal(data, &profile); err != nil {
		slog.Warn("corrupt cached profile, dropping", "pubkey", util.ShortID(pubkey), "error", err)
		s.client.Del(ctx, s.key(pubkey))
		cacheMissesTotal.Add(1)
		return DefaultProfile(pubkey)
	}

	cacheHitsTotal.Add(1)
	return profile
}

func (s *RedisProfileStore) Ingest(ctx context.Context, pubkey string, content string) {
	profile, err := parseProfileMetadata(pubkey, content)
	if err != nil {
		discardMetadata(pubkey, err)
		return
	}

	data, err := json.Marshal(profile)
	if err != nil {
		slog.Warn("failed to marshal profile", "pubkey", util.ShortID(pubkey), "error", err)
		return
	}

	if err := s.client.Set(ctx, s.key(pubkey), data, s.ttl).Err(); err != nil {
		slog.Warn("redis profile set failed", "pubkey", util.ShortID(pubkey), "error", err)
		return
	}

	profileIngestsTotal.Add(1)
}

func (s *RedisProfileStore) Close() error {
	return s.client.Close()
}
