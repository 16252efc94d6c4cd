package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher 非阻塞地提交通知
type Dispatcher interface {
	Dispatch(n Notification)
}

// AsyncNotifier 用固定数量的 Worker 投递通知
// 队列满时直接丢弃并告警，调用方永远不会被通知下游拖慢
type AsyncNotifier struct {
	inner   Notifier
	timeout time.Duration
	tasks   chan Notification

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncNotifier 创建并启动 Worker
func NewAsyncNotifier(inner Notifier, workers, queueSize int) *AsyncNotifier {
	if workers <= 0 {
		workers = 1
	}
	a := &AsyncNotifier{
		inner:   inner,
		timeout: 5 * time.Second,
		tasks:   make(chan Notification, queueSize),
	}
	a.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go a.worker()
	}
	return a
}

func (a *AsyncNotifier) worker() {
	defer a.wg.Done()
	for n := range a.tasks {
		a.deliver(n)
	}
}

func (a *AsyncNotifier) deliver(n Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("notify worker panic", zap.Any("recover", rec))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.inner.Notify(ctx, n); err != nil {
		zap.L().Warn("通知投递失败",
			zap.String("user_id", n.UserId),
			zap.String("kind", string(n.Kind)),
			zap.String("room_id", n.RoomId),
			zap.Error(err),
		)
	}
}

// Dispatch 提交通知，队列满或已关闭时丢弃
func (a *AsyncNotifier) Dispatch(n Notification) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	select {
	case a.tasks <- n:
	default:
		zap.L().Warn("notify queue full, dropping notification",
			zap.String("user_id", n.UserId),
			zap.String("kind", string(n.Kind)),
		)
	}
}

// Close 停止接收新通知，并等待队列中已有通知投递完成
func (a *AsyncNotifier) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.tasks)
	a.mu.Unlock()
	a.wg.Wait()
}

var _ Dispatcher = (*AsyncNotifier)(nil)
