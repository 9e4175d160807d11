package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StructureCache 编辑页投影缓存，失败只记录日志，不影响主流程
type StructureCache interface {
	GetEditPage(ctx context.Context, quizID uint) (*EditPage, bool)
	SetEditPage(ctx context.Context, quizID uint, page *EditPage)
	Invalidate(ctx context.Context, quizID uint)
	Flush(ctx context.Context) error
}

const editPageKeyPrefix = "quiz:edit:"

func editPageKey(quizID uint) string {
	return fmt.Sprintf("%s%d", editPageKeyPrefix, quizID)
}

type RedisStructureCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisStructureCache(rdb *redis.Client, ttl time.Duration) *RedisStructureCache {
	return &RedisStructureCache{Redis: rdb, TTL: ttl}
}

func (c *RedisStructureCache) GetEditPage(ctx context.Context, quizID uint) (*EditPage, bool) {
	val, err := c.Redis.Get(ctx, editPageKey(quizID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("读取编辑页缓存失败", zap.Uint("quiz_id", quizID), zap.Error(err))
		}
		monitoring.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	var page EditPage
	if err := json.Unmarshal(val, &page); err != nil {
		logger.Log.Warn("编辑页缓存内容无效", zap.Uint("quiz_id", quizID), zap.Error(err))
		monitoring.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	monitoring.CacheLookups.WithLabelValues("hit").Inc()
	return &page, true
}

func (c *RedisStructureCache) SetEditPage(ctx context.Context, quizID uint, page *EditPage) {
	data, err := json.Marshal(page)
	if err != nil {
		logger.Log.Warn("序列化编辑页失败", zap.Uint("quiz_id", quizID), zap.Error(err))
		return
	}
	if err := c.Redis.Set(ctx, editPageKey(quizID), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("写入编辑页缓存失败", zap.Uint("quiz_id", quizID), zap.Error(err))
	}
}

func (c *RedisStructureCache) Invalidate(ctx context.Context, quizID uint) {
	if err := c.Redis.Del(ctx, editPageKey(quizID)).Err(); err != nil {
		logger.Log.Warn("清除编辑页缓存失败", zap.Uint("quiz_id", quizID), zap.Error(err))
	}
}

// Flush 只删除编辑页相关键，不清空整个库
func (c *RedisStructureCache) Flush(ctx context.Context) error {
	iter := c.Redis.Scan(ctx, 0, editPageKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Redis.Del(ctx, keys...).Err()
}

// NopStructureCache 未启用 Redis 时使用
type NopStructureCache struct{}

func (NopStructureCache) GetEditPage(context.Context, uint) (*EditPage, bool) { return nil, false }
func (NopStructureCache) SetEditPage(context.Context, uint, *EditPage) {}
func (NopStructureCache) Invalidate(context.Context, uint) {}
func (NopStructureCache) Flush(context.Context) error { return nil }
