// 包 messaging 将基金领域事件发布到 Kafka
package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/fundpooling/internal/fund/domain"
)

// Producer 消息发送接口，生产实现为 pkg/mq 的 KafkaProducer
type Producer interface {
	SendMessage(ctx context.Context, topic string, key string, value interface{}) error
}

// KafkaEventPublisher 基金事件发布器
// 以基金 ID 作为消息 Key，保证同一基金事件的分区有序
type KafkaEventPublisher struct {
	producer Producer
	topic    string
}

// NewKafkaEventPublisher 创建事件发布器
func NewKafkaEventPublisher(producer Producer, topic string) domain.EventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// eventEnvelope 统一事件信封
type eventEnvelope struct {
	EventType  string           `json:"event_type"`
	FundID     string           `json:"fund_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    domain.FundEvent `json:"payload"`
}

// Publish 发布领域事件
func (p *KafkaEventPublisher) Publish(ctx context.Context, event domain.FundEvent) error {
	envelope := eventEnvelope{
		EventType:  event.EventType(),
		FundID:     event.AggregateID(),
		OccurredAt: event.OccurredAt(),
		Payload:    event,
	}

	return p.producer.SendMessage(ctx, p.topic, event.AggregateID(), envelope)
}
