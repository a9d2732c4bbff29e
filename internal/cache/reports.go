package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "mindmirror:report:"

// ReportCache is a read-through cache of report views keyed by report id.
// Misses and backend errors are indistinguishable to callers.
type ReportCache interface {
	Get(ctx context.Context, reportID string) (*models.ReportView, bool)
	Set(ctx context.Context, view *models.ReportView)
	Invalidate(ctx context.Context, reportID string)
	Close() error
}

// New connects to redis when an address is configured, otherwise it returns
// a cache that never holds anything.
func New(conf config.RedisConfig, log *zap.Logger) (ReportCache, error) {
	if conf.Addr == "" {
		log.Info("Redis address not set, report cache disabled")
		return Nop{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        conf.Addr,
		Password:    conf.Password,
		DB:          conf.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info("Report cache connected", zap.String("addr", conf.Addr))
	return NewRedis(rdb, conf.TTL, log), nil
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *zap.Logger) ReportCache {
	return &redisCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *redisCache) Get(ctx context.Context, reportID string) (*models.ReportView, bool) {
	raw, err := c.rdb.Get(ctx, keyPrefix+reportID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("Report cache read failed", zap.String("report_id", reportID), zap.Error(err))
		return nil, false
	}

	var view models.ReportView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.log.Warn("Discarding undecodable cached report", zap.String("report_id", reportID), zap.Error(err))
		return nil, false
	}
	return &view, true
}

func (c *redisCache) Set(ctx context.Context, view *models.ReportView) {
	raw, err := json.Marshal(view)
	if err != nil {
		c.log.Warn("Report cache encode failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+view.Report.ReportID, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Report cache write failed", zap.String("report_id", view.Report.ReportID), zap.Error(err))
	}
}

func (c *redisCache) Invalidate(ctx context.Context, reportID string) {
	if err := c.rdb.Del(ctx, keyPrefix+reportID).Err(); err != nil {
		c.log.Warn("Report cache invalidate failed", zap.String("report_id", reportID), zap.Error(err))
	}
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}

// Nop is the disabled cache.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.ReportView, bool) { return nil, false }
func (Nop) Set(context.Context, *models.ReportView)                {}
func (Nop) Invalidate(context.Context, string)                     {}
func (Nop) Close() error                                           { return nil }
