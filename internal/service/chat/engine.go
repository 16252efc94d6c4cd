// Package chat 实现聊天核心引擎
// 负责聊天室创建、消息发送、历史记录和离开聊天室，组合存储、已读状态、在线状态和隐私过滤
// 引擎本身不持有连接，返回的 Delivery 告诉网关应该把结果推送给谁
package chat

import (
	"context"
	"time"

	"market_chat_server/internal/dao/mysql/repository"
	"market_chat_server/internal/service/identity"
	"market_chat_server/internal/service/notify"
	"market_chat_server/internal/service/privacy"
	"market_chat_server/internal/service/product"
)

// ReadState 引擎依赖的已读状态操作
type ReadState interface {
	IncrementUnread(ctx context.Context, roomId, recipientId string) (bool, error)
	GetUnread(ctx context.Context, roomId, userId string) (int64, bool, error)
	SetUnread(ctx context.Context, roomId, userId string, count int64) error
	UpdateLastRead(ctx context.Context, roomId, userId string, at time.Time) error
	Reconcile(ctx context.Context, marker repository.ReadMarker, roomId, userId string, at time.Time) (int64, error)
	DeleteState(ctx context.Context, roomId, userId string) error
}

// Presence 引擎依赖的"当前查看聊天室"指针操作
type Presence interface {
	SetCurrentRoom(ctx context.Context, userId, roomId string) error
	ClearCurrentRoomIf(ctx context.Context, userId, roomId string) error
}

// TaskSubmitter 提交不影响响应结果的异步缓存任务
type TaskSubmitter interface {
	SubmitTask(action func())
}

// EngineConfig 引擎依赖
type EngineConfig struct {
	Repos     *repository.Repositories
	Products  product.Resolver
	Profiles  identity.ProfileLookup
	ReadState ReadState
	Presence  Presence
	Notifier  notify.Dispatcher
	// Tasks 为空时缓存重建同步执行
	Tasks TaskSubmitter
}

// Engine 聊天引擎
type Engine struct {
	repos     *repository.Repositories
	products  product.Resolver
	profiles  identity.ProfileLookup
	readState ReadState
	presence  Presence
	notifier  notify.Dispatcher
	tasks     TaskSubmitter
	evaluate  func(content string) privacy.Verdict
}

// NewEngine 创建聊天引擎
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		repos:     cfg.Repos,
		products:  cfg.Products,
		profiles:  cfg.Profiles,
		readState: cfg.ReadState,
		presence:  cfg.Presence,
		notifier:  cfg.Notifier,
		tasks:     cfg.Tasks,
		evaluate:  privacy.Evaluate,
	}
}

func (e *Engine) submit(action func()) {
	if e.tasks == nil {
		action()
		return
	}
	e.tasks.SubmitTask(action)
}
