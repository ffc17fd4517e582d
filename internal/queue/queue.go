// Package queue describes what travels between the intake dispatcher and the
// per-format consumers, independent of the broker that carries it.
package queue

import (
	"context"
	"fmt"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

const (
	EventTypeAttribute   = "event_type"
	ContentTypeAttribute = "content-type"
	FailureAttribute     = "failure"
)

// Lane is one format's path through the system: its own queue, event type and codec.
type Lane struct {
	Format    domain.Format
	EventType string
}

var (
	JSONLane = Lane{Format: domain.FormatJSON, EventType: "json_event"}
	XMLLane  = Lane{Format: domain.FormatXML, EventType: "xml_event"}
)

func LaneFor(f domain.Format) (Lane, error) {
	switch f {
	case domain.FormatJSON:
		return JSONLane, nil
	case domain.FormatXML:
		return XMLLane, nil
	}
	return Lane{}, fmt.Errorf("no lane for format %q", f)
}

// Message is a serialized order plus its attributes. ID identifies the delivery
// (broker position), Key identifies the order.
type Message struct {
	ID         string
	Key        string
	Body       []byte
	Attributes map[string]string
}

func (m Message) EventType() string {
	return m.Attributes[EventTypeAttribute]
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, msg Message) error

func (f PublisherFunc) Publish(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
