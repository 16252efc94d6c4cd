package redis

import (
	"context"
	"time"

	"market_chat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// compareAndDeleteScript KEYS[1]=key ARGV[1]=expected
var compareAndDeleteScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// claimOrRefreshScript KEYS[1]=key KEYS[2..]=companions ARGV[1]=owner ARGV[2]=ttl(ms)
var claimOrRefreshScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current ~= false and current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
for i = 2, #KEYS do
	redis.call('PEXPIRE', KEYS[i], ARGV[2])
end
return 1
`)

// CompareAndDelete 仅当值匹配时删除，旧连接断开不会误删新连接写入的键
func (r *RedisCache) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	n, err := compareAndDeleteScript.Run(ctx, r.client, []string{key}, expected).Int64()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis compare-and-delete key %s", key)
	}
	return n == 1, nil
}

// ClaimOrRefresh 键空闲或属于 owner 时写入并续期
func (r *RedisCache) ClaimOrRefresh(ctx context.Context, key, owner string, ttl time.Duration, companions ...string) (bool, error) {
	keys := append([]string{key}, companions...)
	n, err := claimOrRefreshScript.Run(ctx, r.client, keys, owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis claim key %s", key)
	}
	return n == 1, nil
}
