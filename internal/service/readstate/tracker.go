// Package readstate 维护聊天室的未读计数与最后阅读时间
// 缓存负责快速读取，消息表的 is_read 字段是权威数据，缓存丢失可从数据库重建
package readstate

import (
	"context"
	"strconv"
	"time"

	"market_chat_server/internal/dao/mysql/repository"
	myredis "market_chat_server/internal/dao/redis"
	"market_chat_server/pkg/constants"
	"market_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// CurrentRoomReader 读取用户正在查看的聊天室
type CurrentRoomReader interface {
	GetCurrentRoom(ctx context.Context, userId string) (string, error)
}

// Tracker 已读状态跟踪器
type Tracker struct {
	cache    myredis.CacheService
	presence CurrentRoomReader
	ttl      time.Duration
}

// NewTracker 创建跟踪器，ttl <= 0 时使用默认有效期
func NewTracker(cache myredis.CacheService, presence CurrentRoomReader, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = constants.READ_STATE_TTL
	}
	return &Tracker{cache: cache, presence: presence, ttl: ttl}
}

func unreadKey(roomId, userId string) string {
	return constants.UNREAD_KEY_PREFIX + roomId + ":" + userId
}

func lastReadKey(roomId, userId string) string {
	return constants.LAST_READ_KEY_PREFIX + roomId + ":" + userId
}

// IncrementUnread 接收方正在查看该聊天室时不计数，返回是否实际自增
// 查询当前聊天室失败时按"未在查看"处理，宁可多计一条
func (t *Tracker) IncrementUnread(ctx context.Context, roomId, recipientId string) (bool, error) {
	current, err := t.presence.GetCurrentRoom(ctx, recipientId)
	if err != nil {
		zap.L().Warn("查询当前聊天室失败，按未查看处理",
			zap.String("room_id", roomId),
			zap.String("user_id", recipientId),
			zap.Error(err),
		)
	}
	if err == nil && current == roomId {
		return false, nil
	}
	if _, err := t.cache.IncrWithTTL(ctx, unreadKey(roomId, recipientId), t.ttl); err != nil {
		return false, err
	}
	return true, nil
}

// GetUnread 返回未读数，第二个返回值表示缓存中是否存在该计数
func (t *Tracker) GetUnread(ctx context.Context, roomId, userId string) (int64, bool, error) {
	return t.cache.GetInt(ctx, unreadKey(roomId, userId))
}

// SetUnread 用数据库统计结果重建缓存
func (t *Tracker) SetUnread(ctx context.Context, roomId, userId string, count int64) error {
	return t.cache.Set(ctx, unreadKey(roomId, userId), strconv.FormatInt(count, 10), t.ttl)
}

// ResetUnread 未读数归零
func (t *Tracker) ResetUnread(ctx context.Context, roomId, userId string) error {
	return t.SetUnread(ctx, roomId, userId, 0)
}

// UpdateLastRead 记录最后阅读时间
func (t *Tracker) UpdateLastRead(ctx context.Context, roomId, userId string, at time.Time) error {
	return t.cache.Set(ctx, lastReadKey(roomId, userId), at.UTC().Format(time.RFC3339Nano), t.ttl)
}

// GetLastRead 获取最后阅读时间，第二个返回值表示是否存在
func (t *Tracker) GetLastRead(ctx context.Context, roomId, userId string) (time.Time, bool, error) {
	v, err := t.cache.Get(ctx, lastReadKey(roomId, userId))
	if err != nil || v == "" {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, false, errorx.Wrapf(err, errorx.CodeCacheError, "解析最后阅读时间 %s", v)
	}
	return at, true, nil
}

// Reconcile 用户打开聊天室时对齐已读状态
//  1. 尽力重置缓存未读数并记录阅读时间，失败只记日志
//  2. 以调用方事务内读到的最大消息 ID 为水位，把他人发送的未读消息批量标记为已读
//     失败向上返回，由调用方事务回滚
func (t *Tracker) Reconcile(ctx context.Context, marker repository.ReadMarker, roomId, userId string, at time.Time) (int64, error) {
	if err := t.ResetUnread(ctx, roomId, userId); err != nil {
		zap.L().Warn("重置未读数失败",
			zap.String("room_id", roomId),
			zap.String("user_id", userId),
			zap.Error(err),
		)
	}
	if err := t.UpdateLastRead(ctx, roomId, userId, at); err != nil {
		zap.L().Warn("记录最后阅读时间失败",
			zap.String("room_id", roomId),
			zap.String("user_id", userId),
			zap.Error(err),
		)
	}

	watermark, err := marker.LatestId(roomId)
	if err != nil {
		return 0, err
	}
	if watermark == 0 {
		return 0, nil
	}
	return marker.MarkReadUpTo(roomId, userId, watermark)
}

// DeleteState 离开聊天室时清除该用户在该聊天室的全部已读状态
func (t *Tracker) DeleteState(ctx context.Context, roomId, userId string) error {
	return t.cache.Delete(ctx, unreadKey(roomId, userId), lastReadKey(roomId, userId))
}
