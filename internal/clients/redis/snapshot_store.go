package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// SnapshotStore is the redis-backed durable cart snapshot: one JSON value
// per session under cart:snapshot:<session>. Alternative to the gorm repo
// for deployments that already run redis.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID uuid.UUID, items []domain.LineItem) error
	Load(ctx context.Context, sessionID uuid.UUID) ([]domain.LineItem, bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	Close() error
}

type snapshotStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewSnapshotStore(log *logger.Logger) (SnapshotStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &snapshotStore{
		log:    log.With("service", "RedisSnapshotStore"),
		rdb:    rdb,
		prefix: "cart:snapshot:",
		ttl:    30 * 24 * time.Hour,
	}, nil
}

func (s *snapshotStore) key(sessionID uuid.UUID) string {
	return s.prefix + sessionID.String()
}

func (s *snapshotStore) Save(ctx context.Context, sessionID uuid.UUID, items []domain.LineItem) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis snapshot store not initialized")
	}
	if sessionID == uuid.Nil {
		return nil
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(sessionID), raw, s.ttl).Err()
}

func (s *snapshotStore) Load(ctx context.Context, sessionID uuid.UUID) ([]domain.LineItem, bool, error) {
	if s == nil || s.rdb == nil {
		return nil, false, fmt.Errorf("redis snapshot store not initialized")
	}
	if sessionID == uuid.Nil {
		return nil, false, nil
	}
	raw, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, true, nil
}

func (s *snapshotStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis snapshot store not initialized")
	}
	if sessionID == uuid.Nil {
		return nil
	}
	return s.rdb.Del(ctx, s.key(sessionID)).Err()
}

func (s *snapshotStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
