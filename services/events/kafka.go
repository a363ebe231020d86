// Package eventsvc publishes notification events for external consumers
// (mobile push, digest workers).
package eventsvc

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/trezcool/fyptrack/core/notification"
)

type kafkaPublisher struct {
	writer *kafka.Writer
}

var _ notification.EventPublisher = (*kafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) *kafkaPublisher {
	return &kafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:      brokers,
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: 1,
		}),
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event notification.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshaling event")
	}
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(event.UserID)),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "writing event")
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
