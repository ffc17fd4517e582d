package kafka

import (
	"context"
	"sort"

	"github.com/segmentio/kafka-go"

	"github.com/RaikyD/orders-intake-service/internal/queue"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes synchronously and waits for all in-sync replicas, so a nil error
// means the order is durably queued.
type Producer struct {
	w writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

// Topic returns a publisher bound to one topic.
func (p *Producer) Topic(topic string) queue.Publisher {
	return queue.PublisherFunc(func(ctx context.Context, msg queue.Message) error {
		return p.w.WriteMessages(ctx, toKafkaMessage(topic, msg))
	})
}

func toKafkaMessage(topic string, msg queue.Message) kafka.Message {
	keys := make([]string, 0, len(msg.Attributes))
	for k := range msg.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(msg.Attributes[k])})
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.Key),
		Value:   msg.Body,
		Headers: headers,
	}
}
