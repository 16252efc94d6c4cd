// Package mq 封装 Kafka 底层连接，不包含聊天业务逻辑
// 聊天投递广播与通知投递各自使用一个主题
package mq

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"market_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewWriter 创建生产者，按 key 哈希分区，同一聊天室的投递保持顺序
func NewWriter(cfg *config.KafkaConfig, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           timeout(cfg),
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
	}
}

// NewReader 创建消费者
// groupID 为空时不加入消费组，由调用方决定是否每个实例独立消费
func NewReader(cfg *config.KafkaConfig, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.HostPort},
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: timeout(cfg),
		StartOffset:    kafka.LastOffset,
	})
}

// EnsureTopics 创建缺失的主题，已存在的主题忽略
func EnsureTopics(cfg *config.KafkaConfig, topics ...string) error {
	conn, err := kafka.Dial("tcp", cfg.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	// 创建主题必须连到 controller 节点
	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	ctrlConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer ctrlConn.Close()

	partitions := cfg.Partition
	if partitions <= 0 {
		partitions = 1
	}
	var topicConfigs []kafka.TopicConfig
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		topicConfigs = append(topicConfigs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		})
	}
	if len(topicConfigs) == 0 {
		return nil
	}
	if err := ctrlConn.CreateTopics(topicConfigs...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return err
	}
	return nil
}

// MessageReader kafka.Reader 的读取子集
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Consume 持续读取消息并交给 handle，ctx 取消或 reader 关闭时返回
func Consume(ctx context.Context, reader MessageReader, handle func(kafka.Message)) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			zap.L().Error("kafka read message failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		handle(msg)
	}
}

func timeout(cfg *config.KafkaConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 10 * time.Second
	}
	return cfg.Timeout * time.Second
}
