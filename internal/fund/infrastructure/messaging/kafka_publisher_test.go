package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/fundpooling/internal/fund/domain"
)

type sentMessage struct {
	topic string
	key   string
	value interface{}
}

type fakeProducer struct {
	sent []sentMessage
	err  error
}

func (p *fakeProducer) SendMessage(ctx context.Context, topic string, key string, value interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, sentMessage{topic: topic, key: key, value: value})
	return nil
}

func TestPublish_WrapsEventInEnvelope(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaEventPublisher(producer, "fund.events")

	occurredAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	event := domain.FundClosedEvent{
		BaseEvent: domain.BaseEvent{
			FundID:    "FND-42",
			Timestamp: occurredAt,
		},
		InvestedAmount: decimal.NewFromInt(1000),
	}

	err := publisher.Publish(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, producer.sent, 1)
	message := producer.sent[0]
	assert.Equal(t, "fund.events", message.topic)
	assert.Equal(t, "FND-42", message.key)

	envelope, ok := message.value.(eventEnvelope)
	require.True(t, ok)
	assert.Equal(t, "FundClosed", envelope.EventType)
	assert.Equal(t, "FND-42", envelope.FundID)
	assert.Equal(t, occurredAt, envelope.OccurredAt)
	assert.Equal(t, event, envelope.Payload)
}

func TestPublish_KeysByFundID(t *testing.T) {
	producer := &fakeProducer{}
	publisher := NewKafkaEventPublisher(producer, "fund.events")

	for _, fundID := range []string{"FND-1", "FND-2", "FND-1"} {
		event := domain.FundsAddedEvent{
			BaseEvent: domain.BaseEvent{FundID: fundID, Timestamp: time.Now()},
			AccountID: "ACC-A",
			Amount:    decimal.NewFromInt(10),
		}
		require.NoError(t, publisher.Publish(context.Background(), event))
	}

	require.Len(t, producer.sent, 3)
	assert.Equal(t, "FND-1", producer.sent[0].key)
	assert.Equal(t, "FND-2", producer.sent[1].key)
	assert.Equal(t, "FND-1", producer.sent[2].key)
}

func TestPublish_PropagatesProducerError(t *testing.T) {
	wantErr := errors.New("broker unavailable")
	producer := &fakeProducer{err: wantErr}
	publisher := NewKafkaEventPublisher(producer, "fund.events")

	event := domain.FundCreatedEvent{
		BaseEvent: domain.BaseEvent{FundID: "FND-1", Timestamp: time.Now()},
		Title:     "Alpha Fund",
	}

	err := publisher.Publish(context.Background(), event)
	assert.ErrorIs(t, err, wantErr)
}
