package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// BookedRange はキャッシュに保存する予約済み期間
type BookedRange struct {
	DateIn  time.Time `json:"date_in"`
	DateOut time.Time `json:"date_out"`
}

// AvailabilityCacheInterface は空き状況キャッシュのインターフェース
type AvailabilityCacheInterface interface {
	GetBookedRanges(ctx context.Context, propertyID string) ([]BookedRange, error)
	SetBookedRanges(ctx context.Context, propertyID string, ranges []BookedRange, ttl time.Duration) error
	Invalidate(ctx context.Context, propertyID string) error
}

// AvailabilityCache は物件ごとの予約済み期間をキャッシュする
// 予約確定時に無効化され、読み取り専用の空き照会だけが利用する
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// GetBookedRanges は物件の予約済み期間をキャッシュから取得する
func (c *AvailabilityCache) GetBookedRanges(ctx context.Context, propertyID string) ([]BookedRange, error) {
	key := c.bookedRangesKey(propertyID)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var ranges []BookedRange
	if err := json.Unmarshal([]byte(val), &ranges); err != nil {
		return nil, fmt.Errorf("キャッシュ復元に失敗: %w", err)
	}
	return ranges, nil
}

// SetBookedRanges は物件の予約済み期間をキャッシュに保存する
func (c *AvailabilityCache) SetBookedRanges(ctx context.Context, propertyID string, ranges []BookedRange, ttl time.Duration) error {
	data, err := json.Marshal(ranges)
	if err != nil {
		return fmt.Errorf("キャッシュ変換に失敗: %w", err)
	}
	key := c.bookedRangesKey(propertyID)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は物件のキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, propertyID string) error {
	key := c.bookedRangesKey(propertyID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) bookedRangesKey(propertyID string) string {
	return fmt.Sprintf("bookings:ranges:%s", propertyID)
}

var _ AvailabilityCacheInterface = (*AvailabilityCache)(nil)
