package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cargoease/api/internal/model"
)

const (
	summaryKeyPrefix = "cargoease:summary:"
	summaryTTL       = 5 * time.Minute
)

// SummaryCache 车辆保养面板的 Redis 缓存。行程或轮胎调度改动后由
// 协调器失效，读侧未命中时重建。
type SummaryCache struct {
	redis *redis.Client
}

// NewSummaryCache 创建面板缓存
func NewSummaryCache(redisClient *redis.Client) *SummaryCache {
	return &SummaryCache{redis: redisClient}
}

// Get 读缓存，未命中返回 (nil, nil)
func (c *SummaryCache) Get(ctx context.Context, vehicleID int) (*model.MaintenanceSummary, error) {
	data, err := c.redis.Get(ctx, summaryKey(vehicleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary model.MaintenanceSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Set 写缓存
func (c *SummaryCache) Set(ctx context.Context, summary *model.MaintenanceSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, summaryKey(summary.VehicleID), data, summaryTTL).Err()
}

// Invalidate 删除某辆车的缓存
func (c *SummaryCache) Invalidate(ctx context.Context, vehicleID int) error {
	return c.redis.Del(ctx, summaryKey(vehicleID)).Err()
}

func summaryKey(vehicleID int) string {
	return fmt.Sprintf("%s%d", summaryKeyPrefix, vehicleID)
}
