// Package redis 提供 Redis 缓存操作的封装
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"market_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 根据配置创建 Redis 客户端并返回带 Worker Pool 的缓存服务
func Init(conf *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port),
		Password: conf.RedisConfig.Password,
		DB:       conf.RedisConfig.Db,
		// 连接池配置
		PoolSize:     50,
		MinIdleConns: conf.ChatConfig.CacheWorkers,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	zap.L().Info("Redis 连接成功", zap.String("addr", client.Options().Addr))

	return NewRedisCache(client, conf.ChatConfig.CacheWorkers, conf.ChatConfig.CacheQueueSize), nil
}
