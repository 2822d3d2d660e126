package kafka

import (
	"context"
	"encoding/json"

	"kobopay/internal/events"

	"github.com/segmentio/kafka-go"
)

// Publisher writes transaction-completed events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) TransactionCompleted(ctx context.Context, event events.TransactionCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Reference),
		Value: data,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
