package intake

import (
	"bytes"
	"context"
	"fmt"
	"mime"

	"github.com/google/uuid"

	"github.com/RaikyD/orders-intake-service/internal/codec"
	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/logger"
	"github.com/RaikyD/orders-intake-service/internal/metrics"
	"github.com/RaikyD/orders-intake-service/internal/queue"
)

// Ack is returned once an order is durably queued.
type Ack struct {
	OrderID uuid.UUID
	Format  domain.Format
	Message string
}

type route struct {
	lane      queue.Lane
	codec     codec.Codec
	publisher queue.Publisher
	ack       string
}

// Dispatcher picks the parser for a request's content type, validates the order and
// submits it to that format's queue. It keeps no state between calls.
type Dispatcher struct {
	routes  map[string]route
	metrics *metrics.Metrics
}

func NewDispatcher(jsonQueue, xmlQueue queue.Publisher, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		routes: map[string]route{
			codec.JSON.ContentType: {
				lane:      queue.JSONLane,
				codec:     codec.JSON,
				publisher: jsonQueue,
				ack:       "Order processed successfully",
			},
			codec.XML.ContentType: {
				lane:      queue.XMLLane,
				codec:     codec.XML,
				publisher: xmlQueue,
				ack:       "Order processed successfully as XML",
			},
		},
		metrics: m,
	}
}

// Dispatch returns only after the queue has accepted the order. Errors:
// domain.ErrUnsupportedMediaType, domain.ErrEmptyBody, parser/validation errors
// (see domain.IsValidationError), or one wrapping domain.ErrQueueSubmission.
func (d *Dispatcher) Dispatch(ctx context.Context, contentType string, body []byte) (Ack, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		d.count("unknown", "unsupported_media_type")
		return Ack{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, contentType)
	}
	rt, ok := d.routes[mediaType]
	if !ok {
		d.count("unknown", "unsupported_media_type")
		return Ack{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, mediaType)
	}
	lane := string(rt.lane.Format)

	if len(bytes.TrimSpace(body)) == 0 {
		d.count(lane, "empty_body")
		return Ack{}, domain.ErrEmptyBody
	}

	order, err := rt.codec.Parse(body)
	if err != nil {
		d.count(lane, "invalid")
		logger.Info("order rejected", "lane", lane, "err", err)
		return Ack{}, err
	}

	payload, err := rt.codec.Encode(order)
	if err != nil {
		d.count(lane, "error")
		return Ack{}, fmt.Errorf("codec.Encode: %w", err)
	}

	msg := queue.Message{
		Key:  order.ID.String(),
		Body: payload,
		Attributes: map[string]string{
			queue.EventTypeAttribute:   rt.lane.EventType,
			queue.ContentTypeAttribute: rt.codec.ContentType,
		},
	}
	if err := rt.publisher.Publish(ctx, msg); err != nil {
		d.count(lane, "queue_failure")
		logger.Error("queue submission failed", "lane", lane, "order_id", order.ID, "err", err)
		return Ack{}, fmt.Errorf("%w: %w", domain.ErrQueueSubmission, err)
	}

	d.count(lane, "accepted")
	logger.Info("order queued", "lane", lane, "order_id", order.ID, "event_type", rt.lane.EventType)
	return Ack{OrderID: order.ID, Format: rt.lane.Format, Message: rt.ack}, nil
}

func (d *Dispatcher) count(lane, result string) {
	if d.metrics == nil {
		return
	}
	d.metrics.Intake.WithLabelValues(lane, result).Inc()
}
