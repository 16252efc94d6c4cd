// Package redis 定义缓存服务接口
// Service 层依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
type CacheService interface {
	// ==================== String 操作 ====================

	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)
	// GetInt 获取整数值，第二个返回值表示键是否存在
	GetInt(ctx context.Context, key string) (int64, bool, error)
	// IncrWithTTL 在同一个 MULTI 中执行 INCR 与 EXPIRE，返回自增后的值
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// ==================== Key 操作 ====================

	// Delete 删除键，不存在时忽略
	Delete(ctx context.Context, keys ...string) error
	// Expire 刷新键的过期时间，键不存在时返回 false
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ==================== 原子脚本 ====================

	// CompareAndDelete 仅当键的值等于 expected 时删除，返回是否删除
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
	// ClaimOrRefresh 键不存在或值等于 owner 时写入 owner 并续期，同时续期 companions；
	// 键属于其他值时不做任何修改并返回 false
	ClaimOrRefresh(ctx context.Context, key, owner string, ttl time.Duration, companions ...string) (bool, error)
}

// AsyncCacheService 异步缓存服务接口
// 提供异步任务提交能力，用于非阻塞缓存更新
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步缓存任务
	SubmitTask(action func())
}
