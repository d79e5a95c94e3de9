package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ゲストカートの1行。ログイン前のカートはDBではなくRedisに置く。
type GuestCartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// ゲストカートの保存先。テストではメモリ実装を差し込む。
type GuestCartStore interface {
	Get(ctx context.Context, guestID string) ([]GuestCartLine, error)
	Save(ctx context.Context, guestID string, lines []GuestCartLine) error
	Delete(ctx context.Context, guestID string) error
}

type redisGuestCartStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// リロードしても消えないよう、guest_idごとにTTL付きで保存する。
func NewRedisGuestCartStore(addr string, ttl time.Duration) (GuestCartStore, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("missing redis addr")
	}
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisGuestCartStore{rdb: rdb, ttl: ttl}, nil
}

func guestCartKey(guestID string) string {
	return "guest_cart:" + guestID
}

func (s *redisGuestCartStore) Get(ctx context.Context, guestID string) ([]GuestCartLine, error) {
	raw, err := s.rdb.Get(ctx, guestCartKey(guestID)).Result()
	if errors.Is(err, goredis.Nil) {
		return []GuestCartLine{}, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []GuestCartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		// 壊れたデータは空扱いにする
		return []GuestCartLine{}, nil
	}
	return lines, nil
}

func (s *redisGuestCartStore) Save(ctx context.Context, guestID string, lines []GuestCartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, guestCartKey(guestID), raw, s.ttl).Err()
}

func (s *redisGuestCartStore) Delete(ctx context.Context, guestID string) error {
	return s.rdb.Del(ctx, guestCartKey(guestID)).Err()
}
