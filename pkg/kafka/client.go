// Package kafka 提供了与 Kafka 消息队列交互的功能。
// 本服务只做生产者：会话升级事件写入坐席队列主题，由坐席系统消费。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"support-chat-go/internal/config"
	"support-chat-go/internal/service"
	"support-chat-go/pkg/log"
)

// Notifier 将会话升级事件发送到 Kafka，实现 service.EscalationNotifier。
type Notifier struct {
	writer *kafka.Writer
}

// NewNotifier 创建一个新的升级事件生产者。
func NewNotifier(cfg config.KafkaConfig) *Notifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Infof("Kafka 升级事件生产者初始化成功，主题 '%s'", cfg.Topic)
	return &Notifier{writer: writer}
}

// NotifyEscalation 发送一条升级事件。以会话 id 作为消息 key，
// 保证同一会话的事件落在同一分区内有序。
func (n *Notifier) NotifyEscalation(ctx context.Context, event service.EscalationEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal escalation event: %w", err)
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: eventBytes,
	})
}

// Close 关闭底层的 Kafka writer。
func (n *Notifier) Close() error {
	return n.writer.Close()
}
