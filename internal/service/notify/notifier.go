// Package notify 投递"通知某用户发生了某事"的事件
// 通知是尽力而为的：失败只记日志，永远不阻塞消息投递
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Kind 通知类型
type Kind string

const (
	KindRoomCreated Kind = "ROOM_CREATED" // 买家发起了新的聊天室
	KindNewMessage  Kind = "NEW_MESSAGE"  // 收到新消息
)

// Notification 通知内容，格式化与推送渠道由下游通知服务决定
type Notification struct {
	UserId    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	RoomId    string    `json:"room_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier 通知投递接口
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier 未配置通知主题时使用，只写日志
type LogNotifier struct{}

// Notify 记录通知
func (LogNotifier) Notify(_ context.Context, n Notification) error {
	zap.L().Info("notification",
		zap.String("user_id", n.UserId),
		zap.String("kind", string(n.Kind)),
		zap.String("room_id", n.RoomId),
		zap.String("title", n.Title),
	)
	return nil
}

// messageWriter kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier 将通知写入 Kafka 通知主题，按用户 ID 分区
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaNotifier 创建 Kafka 通知投递器
func NewKafkaNotifier(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// Notify 序列化并写入 Kafka
func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.UserId),
		Value: value,
	})
}

// Close 关闭底层 writer
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

var (
	_ Notifier = LogNotifier{}
	_ Notifier = (*KafkaNotifier)(nil)
)
