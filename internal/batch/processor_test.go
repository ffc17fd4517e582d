package batch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RaikyD/orders-intake-service/internal/application"
	"github.com/RaikyD/orders-intake-service/internal/batch"
	"github.com/RaikyD/orders-intake-service/internal/codec"
	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/metrics"
	"github.com/RaikyD/orders-intake-service/internal/orderfixture"
	"github.com/RaikyD/orders-intake-service/internal/queue"
	"github.com/RaikyD/orders-intake-service/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// failingStore fails for the listed order ids and delegates the rest.
type failingStore struct {
	next batch.Store
	fail map[uuid.UUID]bool
}

func (s *failingStore) Save(ctx context.Context, o domain.Order) error {
	if s.fail[o.ID] {
		return errors.New("disk full")
	}
	return s.next.Save(ctx, o)
}

type panickingStore struct{}

func (panickingStore) Save(context.Context, domain.Order) error { panic("boom") }

func message(t *testing.T, c codec.Codec, lane queue.Lane, id string, o domain.Order) queue.Message {
	t.Helper()
	b, err := c.Encode(o)
	require.NoError(t, err)
	return queue.Message{
		ID:         id,
		Key:        o.ID.String(),
		Body:       b,
		Attributes: map[string]string{queue.EventTypeAttribute: lane.EventType},
	}
}

func newProcessor(t *testing.T, lane queue.Lane, store batch.Store) (*batch.Processor, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	p, err := batch.NewProcessor(lane, store, m, 4)
	require.NoError(t, err)
	return p, m
}

func outcomes(res batch.Result) []batch.Outcome {
	out := make([]batch.Outcome, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, it.Outcome)
	}
	return out
}

func TestProcessPartialFailure(t *testing.T) {
	repo := repository.NewMemoryOrderRepository()
	good1, good2, unlucky := orderfixture.Order(), orderfixture.Order(), orderfixture.Order()
	store := &failingStore{next: application.NewOrdersService(repo), fail: map[uuid.UUID]bool{unlucky.ID: true}}
	p, m := newProcessor(t, queue.JSONLane, store)

	broken := orderfixture.Order()
	broken.Items[0].Subtotal = broken.Items[0].Subtotal.Add(decimal.New(1, -2))

	msgs := []queue.Message{
		message(t, codec.JSON, queue.JSONLane, "m1", good1),
		{ID: "m2", Body: []byte(`{"id": `), Attributes: map[string]string{queue.EventTypeAttribute: "json_event"}},
		message(t, codec.JSON, queue.JSONLane, "m3", broken),
		message(t, codec.JSON, queue.JSONLane, "m4", unlucky),
		message(t, codec.JSON, queue.JSONLane, "m5", good2),
	}

	res := p.Process(context.Background(), msgs)

	assert.Equal(t, []batch.Outcome{
		batch.OutcomeSuccess,
		batch.OutcomeParseFailure,
		batch.OutcomeSchemaFailure,
		batch.OutcomeStoreFailure,
		batch.OutcomeSuccess,
	}, outcomes(res))
	for i, it := range res.Items {
		assert.Equal(t, msgs[i].ID, it.MessageID)
	}
	assert.Len(t, res.Failed(), 3)
	assert.Equal(t, 2, repo.Len())

	stored, err := repo.GetOrderByID(context.Background(), good1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatJSON, stored.Format)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Received.WithLabelValues("json")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Processed.WithLabelValues("json", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processed.WithLabelValues("json", "parse_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processed.WithLabelValues("json", "schema_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Processed.WithLabelValues("json", "store_failure")))
}

func TestProcessRedeliveryIsIdempotent(t *testing.T) {
	repo := repository.NewMemoryOrderRepository()
	p, _ := newProcessor(t, queue.XMLLane, application.NewOrdersService(repo))
	o := orderfixture.Order()
	msg := message(t, codec.XML, queue.XMLLane, "m1", o)

	first := p.Process(context.Background(), []queue.Message{msg})
	second := p.Process(context.Background(), []queue.Message{msg, msg})

	assert.Empty(t, first.Failed())
	assert.Empty(t, second.Failed())
	assert.Equal(t, 1, repo.Len())

	stored, err := repo.GetOrderByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatXML, stored.Format)
	assert.True(t, stored.TotalAmount.Equal(o.TotalAmount))
}

func TestProcessWrongLane(t *testing.T) {
	repo := repository.NewMemoryOrderRepository()
	p, _ := newProcessor(t, queue.XMLLane, application.NewOrdersService(repo))
	msg := message(t, codec.XML, queue.JSONLane, "m1", orderfixture.Order())

	res := p.Process(context.Background(), []queue.Message{msg})

	require.Len(t, res.Items, 1)
	assert.Equal(t, batch.OutcomeParseFailure, res.Items[0].Outcome)
	assert.Contains(t, res.Items[0].Err.Error(), "json_event")
	assert.Zero(t, repo.Len())
}

func TestProcessXMLLaneRejectsJSONBody(t *testing.T) {
	p, _ := newProcessor(t, queue.XMLLane, application.NewOrdersService(repository.NewMemoryOrderRepository()))
	msg := message(t, codec.JSON, queue.XMLLane, "m1", orderfixture.Order())

	res := p.Process(context.Background(), []queue.Message{msg})

	assert.Equal(t, []batch.Outcome{batch.OutcomeParseFailure}, outcomes(res))
}

func TestProcessRecoversFromPanics(t *testing.T) {
	p, _ := newProcessor(t, queue.JSONLane, panickingStore{})
	msg := message(t, codec.JSON, queue.JSONLane, "m1", orderfixture.Order())

	res := p.Process(context.Background(), []queue.Message{msg})

	require.Len(t, res.Items, 1)
	assert.Equal(t, batch.OutcomeParseFailure, res.Items[0].Outcome)
	assert.True(t, strings.Contains(res.Items[0].Err.Error(), "boom"))
}

func TestProcessEmptyBatch(t *testing.T) {
	p, _ := newProcessor(t, queue.JSONLane, application.NewOrdersService(repository.NewMemoryOrderRepository()))

	res := p.Process(context.Background(), nil)

	assert.Empty(t, res.Items)
	assert.Empty(t, res.Failed())
}

// countingStore records the peak number of concurrent saves.
type countingStore struct {
	mu      sync.Mutex
	active  int
	peak    int
	release chan struct{}
}

func (s *countingStore) Save(context.Context, domain.Order) error {
	s.mu.Lock()
	s.active++
	s.peak = max(s.peak, s.active)
	s.mu.Unlock()

	<-s.release

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return nil
}

func TestProcessRespectsWorkerLimit(t *testing.T) {
	store := &countingStore{release: make(chan struct{})}
	m := metrics.New(prometheus.NewRegistry())
	p, err := batch.NewProcessor(queue.JSONLane, store, m, 2)
	require.NoError(t, err)

	msgs := make([]queue.Message, 6)
	for i := range msgs {
		msgs[i] = message(t, codec.JSON, queue.JSONLane, uuid.NewString(), orderfixture.Order())
	}
	go func() {
		for range msgs {
			store.release <- struct{}{}
		}
	}()

	res := p.Process(context.Background(), msgs)

	assert.Empty(t, res.Failed())
	assert.LessOrEqual(t, store.peak, 2)
}

func TestProcessWithoutMetrics(t *testing.T) {
	repo := repository.NewMemoryOrderRepository()
	p, err := batch.NewProcessor(queue.JSONLane, application.NewOrdersService(repo), nil, 2)
	require.NoError(t, err)

	res := p.Process(context.Background(), []queue.Message{
		message(t, codec.JSON, queue.JSONLane, "m1", orderfixture.Order()),
		{ID: "m2", Body: []byte("not json")},
	})

	assert.Equal(t, []batch.Outcome{batch.OutcomeSuccess, batch.OutcomeParseFailure}, outcomes(res))
	assert.Equal(t, 1, repo.Len())
}

func TestNewProcessorUnknownFormat(t *testing.T) {
	_, err := batch.NewProcessor(queue.Lane{Format: "csv", EventType: "csv_event"}, nil, nil, 1)
	assert.Error(t, err)
}
