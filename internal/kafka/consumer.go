package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/RaikyD/orders-intake-service/internal/batch"
	"github.com/RaikyD/orders-intake-service/internal/logger"
	"github.com/RaikyD/orders-intake-service/internal/queue"
)

type ConsumerConfig struct {
	Brokers         []string
	Topic           string
	GroupID         string
	DeadLetterTopic string
	BatchSize       int
	BatchWait       time.Duration
}

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type BatchProcessor interface {
	Process(ctx context.Context, msgs []queue.Message) batch.Result
}

// Consumer drains one lane's topic in batches. Messages that fail are copied to the
// dead-letter topic before the batch is committed; nothing is committed until every
// failed message has been handed over.
type Consumer struct {
	r       reader
	proc    BatchProcessor
	dlq     queue.Publisher
	cfg     ConsumerConfig
	backoff time.Duration
}

func NewConsumer(cfg ConsumerConfig, proc BatchProcessor, dlq queue.Publisher) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})
	return newConsumer(r, cfg, proc, dlq)
}

func newConsumer(r reader, cfg ConsumerConfig, proc BatchProcessor, dlq queue.Publisher) *Consumer {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &Consumer{r: r, proc: proc, dlq: dlq, cfg: cfg, backoff: 300 * time.Millisecond}
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.r.Close()

	logger.Info("kafka consumer starting", "brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)
	for {
		msgs, err := c.fetchBatch(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warn("kafka fetch error", "topic", c.cfg.Topic, "err", err)
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}
		c.handle(ctx, msgs)
	}
}

// fetchBatch blocks for the first message, then collects more until the batch is full
// or BatchWait has passed.
func (c *Consumer) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := c.r.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	msgs := []kafka.Message{first}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.BatchWait)
	defer cancel()
	for len(msgs) < c.cfg.BatchSize {
		m, err := c.r.FetchMessage(waitCtx)
		if err != nil {
			break
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (c *Consumer) handle(ctx context.Context, msgs []kafka.Message) {
	in := make([]queue.Message, len(msgs))
	for i, m := range msgs {
		in[i] = fromKafkaMessage(m)
		logger.Debug("[kafka] fetched", "message_id", in[i].ID, "key", in[i].Key)
	}

	res := c.proc.Process(ctx, in)
	for i, it := range res.Items {
		if it.Outcome == batch.OutcomeSuccess {
			continue
		}
		if !c.redrive(ctx, in[i], it) {
			return
		}
	}

	if err := c.r.CommitMessages(ctx, msgs...); err != nil {
		logger.Warn("[kafka] commit failed", "topic", c.cfg.Topic, "err", err)
		return
	}
	last := msgs[len(msgs)-1]
	logger.Info("[kafka] committed", "topic", last.Topic, "partition", last.Partition, "offset", last.Offset,
		"batch", len(msgs), "failed", len(res.Failed()))
}

// redrive retries until the dead-letter publish succeeds or ctx ends.
func (c *Consumer) redrive(ctx context.Context, msg queue.Message, it batch.ItemResult) bool {
	attrs := make(map[string]string, len(msg.Attributes)+2)
	for k, v := range msg.Attributes {
		attrs[k] = v
	}
	attrs[queue.FailureAttribute] = string(it.Outcome)
	if it.Err != nil {
		attrs["error"] = it.Err.Error()
	}
	dead := queue.Message{ID: msg.ID, Key: msg.Key, Body: msg.Body, Attributes: attrs}

	for {
		err := c.dlq.Publish(ctx, dead)
		if err == nil {
			logger.Warn("message sent to dead-letter topic", "message_id", msg.ID, "topic", c.cfg.DeadLetterTopic, "outcome", it.Outcome)
			return true
		}
		logger.Warn("dead-letter publish failed, will retry", "message_id", msg.ID, "err", err)
		if !sleep(ctx, c.backoff) {
			return false
		}
	}
}

func fromKafkaMessage(m kafka.Message) queue.Message {
	attrs := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		attrs[h.Key] = string(h.Value)
	}
	return queue.Message{
		ID:         fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset),
		Key:        string(m.Key),
		Body:       m.Value,
		Attributes: attrs,
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
