// Package redistest 为测试提供基于 miniredis 的缓存服务
package redistest

import (
	"testing"

	myredis "market_chat_server/internal/dao/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// New 启动一个 miniredis 实例并返回连接它的 RedisCache，测试结束后自动关闭
func New(t testing.TB) (*myredis.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := myredis.NewRedisCache(client, 2, 16)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}
