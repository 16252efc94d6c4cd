// Package websocket 实现聊天网关
// broker.go
// 核心职责：把引擎返回的 Delivery 交给本实例或所有实例的 Hub
// 支持两种实现：ChannelBroker (单机), KafkaBroker (分布式)
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"market_chat_server/internal/infrastructure/mq"
	"market_chat_server/internal/service/chat"
	"market_chat_server/pkg/constants"
	"market_chat_server/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageBroker 消息代理接口
type MessageBroker interface {
	// Publish 发布一次投递
	Publish(ctx context.Context, d chat.Delivery) error
	// Start 启动消费循环，阻塞直到 ctx 取消或 Close
	Start(ctx context.Context)
	// Close 关闭代理资源
	Close() error
}

// ==================== Channel 模式 ====================

// ChannelBroker 单机模式，投递经缓冲通道交给消费协程分发
type ChannelBroker struct {
	hub      *Hub
	transmit chan chat.Delivery
	done     chan struct{}
	once     sync.Once
}

// NewChannelBroker 创建单机代理
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:      hub,
		transmit: make(chan chat.Delivery, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Publish 通道满时返回服务繁忙，消息已落库，客户端可通过拉取历史补齐
func (b *ChannelBroker) Publish(_ context.Context, d chat.Delivery) error {
	select {
	case <-b.done:
		return errorx.New(errorx.CodeServerBusy, "消息通道已关闭")
	default:
	}
	select {
	case b.transmit <- d:
		return nil
	default:
		zap.L().Warn("transmit channel full", zap.String("room_id", d.RoomId))
		return errorx.New(errorx.CodeServerBusy, "当前消息过多，请稍后重试")
	}
}

// Start 消费循环
func (b *ChannelBroker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case d := <-b.transmit:
			b.hub.Dispatch(d)
		}
	}
}

// Close 停止消费循环
func (b *ChannelBroker) Close() error {
	b.once.Do(func() { close(b.done) })
	return nil
}

// ==================== Kafka 模式 ====================

// messageWriter kafka.Writer 的最小子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader kafka.Reader 的最小子集
type messageReader interface {
	mq.MessageReader
	Close() error
}

// KafkaBroker 分布式模式
// 投递写入聊天主题，每个实例用独立的消费组读取全量投递，再交给本机 Hub 分发
// 这样订阅者连在其他实例上也能收到广播
type KafkaBroker struct {
	hub    *Hub
	writer messageWriter
	reader messageReader
}

// NewKafkaBroker 创建分布式代理
func NewKafkaBroker(hub *Hub, writer messageWriter, reader messageReader) *KafkaBroker {
	return &KafkaBroker{hub: hub, writer: writer, reader: reader}
}

// Publish 以聊天室 ID 为 key，同一聊天室的投递落在同一分区，保持顺序
func (b *KafkaBroker) Publish(ctx context.Context, d chat.Delivery) error {
	value, err := json.Marshal(d)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "序列化投递失败")
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(d.RoomId), Value: value}); err != nil {
		zap.L().Error("kafka publish failed", zap.String("room_id", d.RoomId), zap.Error(err))
		return errorx.Wrap(err, errorx.CodeServerBusy, "消息投递失败")
	}
	return nil
}

// Start 消费聊天主题并分发到本机连接
func (b *KafkaBroker) Start(ctx context.Context) {
	mq.Consume(ctx, b.reader, b.handle)
}

func (b *KafkaBroker) handle(msg kafka.Message) {
	var d chat.Delivery
	if err := json.Unmarshal(msg.Value, &d); err != nil {
		zap.L().Error("invalid delivery from kafka", zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}
	b.hub.Dispatch(d)
}

// Close 关闭生产者和消费者
func (b *KafkaBroker) Close() error {
	var firstErr error
	if err := b.writer.Close(); err != nil {
		zap.L().Error("close kafka writer failed", zap.Error(err))
		firstErr = err
	}
	if err := b.reader.Close(); err != nil {
		zap.L().Error("close kafka reader failed", zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ MessageBroker = (*ChannelBroker)(nil)
	_ MessageBroker = (*KafkaBroker)(nil)
)
