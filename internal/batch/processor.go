// Package batch implements the per-lane consumer that drains a batch of queued
// orders and stores each one independently of its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/RaikyD/orders-intake-service/internal/codec"
	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/logger"
	"github.com/RaikyD/orders-intake-service/internal/metrics"
	"github.com/RaikyD/orders-intake-service/internal/queue"
)

type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeSchemaFailure Outcome = "schema_failure"
	OutcomeParseFailure  Outcome = "parse_failure"
	OutcomeStoreFailure  Outcome = "store_failure"
)

type Store interface {
	Save(ctx context.Context, o domain.Order) error
}

type ItemResult struct {
	MessageID string
	OrderID   string
	Outcome   Outcome
	Err       error
}

// Result has one entry per input message, in input order.
type Result struct {
	Items []ItemResult
}

func (r Result) Failed() []ItemResult {
	var failed []ItemResult
	for _, it := range r.Items {
		if it.Outcome != OutcomeSuccess {
			failed = append(failed, it)
		}
	}
	return failed
}

type Processor struct {
	lane    queue.Lane
	codec   codec.Codec
	store   Store
	metrics *metrics.Metrics
	workers int
}

func NewProcessor(lane queue.Lane, store Store, m *metrics.Metrics, workers int) (*Processor, error) {
	c, err := codec.ForFormat(lane.Format)
	if err != nil {
		return nil, fmt.Errorf("codec.ForFormat: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	return &Processor{lane: lane, codec: c, store: store, metrics: m, workers: workers}, nil
}

func (p *Processor) Lane() queue.Lane { return p.lane }

// Process handles every message of the batch and never stops early: each message ends
// in exactly one outcome and no failure affects another message's result.
func (p *Processor) Process(ctx context.Context, msgs []queue.Message) Result {
	lane := string(p.lane.Format)
	if p.metrics != nil {
		p.metrics.Received.WithLabelValues(lane).Add(float64(len(msgs)))
	}

	items := make([]ItemResult, len(msgs))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, msg := range msgs {
		g.Go(func() error {
			items[i] = p.processOne(ctx, msg)
			return nil
		})
	}
	_ = g.Wait()

	if p.metrics != nil {
		for _, it := range items {
			p.metrics.Processed.WithLabelValues(lane, string(it.Outcome)).Inc()
		}
	}
	return Result{Items: items}
}

func (p *Processor) processOne(ctx context.Context, msg queue.Message) (res ItemResult) {
	res.MessageID = msg.ID
	lane := string(p.lane.Format)

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeParseFailure
			res.Err = fmt.Errorf("panic while processing message: %v", r)
			logger.Error("order processing panicked", "lane", lane, "message_id", msg.ID, "panic", r)
		}
	}()

	if et := msg.EventType(); et != "" && et != p.lane.EventType {
		res.Outcome = OutcomeParseFailure
		res.Err = fmt.Errorf("event type %q does not belong to lane %s", et, lane)
		logger.Warn("order on wrong lane", "lane", lane, "message_id", msg.ID, "event_type", et)
		return res
	}

	order, err := p.codec.Parse(msg.Body)
	if err != nil {
		res.Outcome = classify(err)
		res.Err = err
		logger.Warn("queued order rejected", "lane", lane, "message_id", msg.ID, "outcome", res.Outcome, "err", err, "body", string(msg.Body))
		return res
	}
	order.Format = p.lane.Format
	res.OrderID = order.ID.String()

	if err := p.store.Save(ctx, order); err != nil {
		res.Outcome = OutcomeStoreFailure
		res.Err = err
		logger.Error("order store failed", "lane", lane, "message_id", msg.ID, "order_id", res.OrderID, "err", err)
		return res
	}

	res.Outcome = OutcomeSuccess
	logger.Info("order stored", "lane", lane, "message_id", msg.ID, "order_id", res.OrderID)
	return res
}

func classify(err error) Outcome {
	var (
		xmlErr  *domain.XMLParseError
		jsonErr *domain.JSONParseError
	)
	switch {
	case errors.As(err, &xmlErr), errors.As(err, &jsonErr):
		return OutcomeParseFailure
	case domain.IsValidationError(err):
		return OutcomeSchemaFailure
	}
	return OutcomeParseFailure
}
