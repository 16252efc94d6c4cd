// Package presence 维护用户在线会话与"当前正在查看的聊天室"指针
// 两个键都是短 TTL 的缓存，由存活连接的心跳续期
package presence

import (
	"context"
	"time"

	myredis "market_chat_server/internal/dao/redis"
	"market_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// Tracker 在线状态跟踪器
type Tracker struct {
	cache myredis.CacheService
	ttl   time.Duration
}

// NewTracker 创建跟踪器，ttl <= 0 时使用默认会话有效期
func NewTracker(cache myredis.CacheService, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = constants.SESSION_TTL
	}
	return &Tracker{cache: cache, ttl: ttl}
}

func sessionKey(userId string) string {
	return constants.SESSION_KEY_PREFIX + userId
}

func currentRoomKey(userId string) string {
	return constants.CURRENT_ROOM_KEY_PREFIX + userId
}

// SetOnline 记录用户当前连接句柄，后连接的覆盖先连接的
func (t *Tracker) SetOnline(ctx context.Context, userId, handle string) error {
	return t.cache.Set(ctx, sessionKey(userId), handle, t.ttl)
}

// ClearOnline 仅当会话键仍属于 handle 时删除，并一起清掉当前聊天室指针
// 返回 false 表示键已被更新的连接接管，本次断开不影响其在线状态
func (t *Tracker) ClearOnline(ctx context.Context, userId, handle string) (bool, error) {
	removed, err := t.cache.CompareAndDelete(ctx, sessionKey(userId), handle)
	if err != nil || !removed {
		return false, err
	}
	if err := t.cache.Delete(ctx, currentRoomKey(userId)); err != nil {
		zap.L().Warn("清除当前聊天室指针失败", zap.String("user_id", userId), zap.Error(err))
	}
	return true, nil
}

// Refresh 心跳续期；键过期时重新认领，被其他连接持有时返回 false
func (t *Tracker) Refresh(ctx context.Context, userId, handle string) (bool, error) {
	return t.cache.ClaimOrRefresh(ctx, sessionKey(userId), handle, t.ttl, currentRoomKey(userId))
}

// IsOnline 判断用户是否有存活连接，缓存异常时按离线处理
func (t *Tracker) IsOnline(ctx context.Context, userId string) bool {
	v, err := t.cache.Get(ctx, sessionKey(userId))
	if err != nil {
		zap.L().Warn("查询在线状态失败", zap.String("user_id", userId), zap.Error(err))
		return false
	}
	return v != ""
}

// SetCurrentRoom 记录用户正在查看的聊天室，roomId 为空表示退出查看
func (t *Tracker) SetCurrentRoom(ctx context.Context, userId, roomId string) error {
	if roomId == "" {
		return t.cache.Delete(ctx, currentRoomKey(userId))
	}
	return t.cache.Set(ctx, currentRoomKey(userId), roomId, t.ttl)
}

// GetCurrentRoom 获取用户正在查看的聊天室，没有时返回空字符串
func (t *Tracker) GetCurrentRoom(ctx context.Context, userId string) (string, error) {
	return t.cache.Get(ctx, currentRoomKey(userId))
}

// ClearCurrentRoomIf 仅当指针仍指向 roomId 时清除
func (t *Tracker) ClearCurrentRoomIf(ctx context.Context, userId, roomId string) error {
	_, err := t.cache.CompareAndDelete(ctx, currentRoomKey(userId), roomId)
	return err
}
