package cache

import (
	"context"
	"testing"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestNewWithoutAddressIsNop(t *testing.T) {
	c, err := New(config.RedisConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(Nop); !ok {
		t.Fatalf("cache = %T, want Nop", c)
	}
	c.Set(context.Background(), &models.ReportView{Report: &models.Report{ReportID: "r"}})
	if _, hit := c.Get(context.Background(), "r"); hit {
		t.Error("Nop cache returned a hit")
	}
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	if _, err := New(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop()); err == nil {
		t.Error("expected a ping error")
	}
}

func TestRedisCacheDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	c := NewRedis(rdb, time.Minute, zap.NewNop())
	defer c.Close()

	c.Set(context.Background(), &models.ReportView{Report: &models.Report{ReportID: "r"}})
	if _, hit := c.Get(context.Background(), "r"); hit {
		t.Error("unreachable redis should read as a miss")
	}
	c.Invalidate(context.Background(), "r")
}
