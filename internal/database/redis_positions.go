package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"binai-trading-bot/config"
	"binai-trading-bot/internal/portfolio"
)

const (
	// positionKeyPrefix scopes position snapshot keys: binai:position:{symbol}
	positionKeyPrefix = "binai:position"
	// positionSetKey indexes the symbols with live snapshots
	positionSetKey = "binai:positions"
	// positionTTL keeps stale snapshots from lingering after a crash
	positionTTL = 7 * 24 * time.Hour
)

// RedisPositionStore mirrors the live position book to Redis so dashboards
// and standby instances can observe it. When Redis is unreachable it falls
// back to an in-memory map so trading continues without interruption.
type RedisPositionStore struct {
	client    *redis.Client
	fallback  map[string]portfolio.OpenPosition
	mu        sync.RWMutex
	available atomic.Bool
	logger    zerolog.Logger
}

// NewRedisClient builds a Redis client from config
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// NewRedisPositionStore creates a position snapshot store. A nil client
// gives a memory-only store.
func NewRedisPositionStore(client *redis.Client, logger zerolog.Logger) *RedisPositionStore {
	store := &RedisPositionStore{
		client:   client,
		fallback: make(map[string]portfolio.OpenPosition),
		logger:   logger.With().Str("component", "RedisPositionStore").Logger(),
	}

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			store.logger.Warn().Err(err).Msg("Redis unavailable, using in-memory snapshots")
		} else {
			store.available.Store(true)
			store.logger.Info().Msg("Redis connected")
		}
	}

	return store
}

func positionKey(symbol string) string {
	return fmt.Sprintf("%s:%s", positionKeyPrefix, symbol)
}

// SavePosition writes a position snapshot
func (s *RedisPositionStore) SavePosition(ctx context.Context, pos portfolio.OpenPosition) error {
	s.mu.Lock()
	s.fallback[pos.Symbol] = pos
	s.mu.Unlock()

	if s.client == nil || !s.available.Load() {
		return nil
	}

	raw, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("encoding position snapshot for %s: %w", pos.Symbol, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, positionKey(pos.Symbol), raw, positionTTL)
	pipe.SAdd(ctx, positionSetKey, pos.Symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		s.available.Store(false)
		s.logger.Warn().Err(err).Msg("Redis write failed, falling back to in-memory snapshots")
		return nil
	}
	return nil
}

// DeletePosition removes a position snapshot
func (s *RedisPositionStore) DeletePosition(ctx context.Context, symbol string) error {
	s.mu.Lock()
	delete(s.fallback, symbol)
	s.mu.Unlock()

	if s.client == nil || !s.available.Load() {
		return nil
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, positionKey(symbol))
	pipe.SRem(ctx, positionSetKey, symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		s.available.Store(false)
		s.logger.Warn().Err(err).Msg("Redis delete failed, falling back to in-memory snapshots")
	}
	return nil
}

// ListPositions returns every stored snapshot. Unreadable entries are
// skipped, not fatal.
func (s *RedisPositionStore) ListPositions(ctx context.Context) ([]portfolio.OpenPosition, error) {
	if s.client != nil && s.available.Load() {
		symbols, err := s.client.SMembers(ctx, positionSetKey).Result()
		if err == nil {
			out := make([]portfolio.OpenPosition, 0, len(symbols))
			for _, symbol := range symbols {
				raw, err := s.client.Get(ctx, positionKey(symbol)).Bytes()
				if err != nil {
					continue
				}
				var pos portfolio.OpenPosition
				if err := json.Unmarshal(raw, &pos); err != nil {
					s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Skipping corrupt position snapshot")
					continue
				}
				out = append(out, pos)
			}
			return out, nil
		}
		s.available.Store(false)
		s.logger.Warn().Err(err).Msg("Redis read failed, serving in-memory snapshots")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]portfolio.OpenPosition, 0, len(s.fallback))
	for _, pos := range s.fallback {
		out = append(out, pos)
	}
	return out, nil
}
