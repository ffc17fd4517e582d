package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/migrate"
	"github.com/RaikyD/orders-intake-service/internal/orderfixture"
	"github.com/RaikyD/orders-intake-service/internal/repository"
)

type orderRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      repository.OrderRepo
	container *postgres.PostgresContainer
}

func TestOrderRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	suite.Run(t, new(orderRepositorySuite))
}

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("orders"),
		postgres.WithUsername("orders"),
		postgres.WithPassword("orders"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", err
	}
	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return ctr, "", err
	}
	return ctr, connStr, nil
}

func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)
	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.Require().NoError(migrate.Up(connStr))

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewOrderRepository(suite.pool)
}

func (suite *orderRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *orderRepositorySuite) TestPutAndGet() {
	notes := "leave at the door"
	withOptional := orderfixture.Order()
	withOptional.Notes = &notes
	withOptional.PaymentID = &notes
	updated := withOptional.CreatedAt.Add(90 * time.Minute)
	withOptional.UpdatedAt = &updated

	exact := orderfixture.Order()
	exact.Items = exact.Items[:1]
	exact.Items[0].Quantity = 3
	exact.Items[0].UnitPrice = decimal.RequireFromString("0.3333333333333333333333")
	exact.Items[0].Subtotal = decimal.RequireFromString("0.9999999999999999999999")
	exact.TotalAmount = exact.Items[0].Subtotal

	noOptional := orderfixture.Order()
	noOptional.Notes = nil

	tests := []struct {
		name   string
		order  domain.Order
		format domain.Format
	}{
		{name: "json order with optional fields: ok", order: withOptional, format: domain.FormatJSON},
		{name: "xml order without optional fields: ok", order: noOptional, format: domain.FormatXML},
		{name: "many decimal places survive: ok", order: exact, format: domain.FormatJSON},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()
			want := tt.order
			want.Format = tt.format

			require.NoError(t, suite.repo.PutOrder(ctx, want))

			got, err := suite.repo.GetOrderByID(ctx, want.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(want, *got); diff != "" {
				t.Errorf("stored order differs (-want +got):\n%s", diff)
			}
		})
	}
}

func (suite *orderRepositorySuite) TestPutIsAnUpsert() {
	t := suite.T()
	ctx := t.Context()

	o := orderfixture.Order()
	o.Format = domain.FormatJSON
	require.NoError(t, suite.repo.PutOrder(ctx, o))
	require.NoError(t, suite.repo.PutOrder(ctx, o))

	o.Items = o.Items[:1]
	o.TotalAmount = o.ItemsTotal()
	o.Status = domain.StatusPaid
	require.NoError(t, suite.repo.PutOrder(ctx, o))

	got, err := suite.repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, domain.StatusPaid, got.Status)

	var count int
	require.NoError(t, suite.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE id = $1`, o.ID).Scan(&count))
	require.Equal(t, 1, count)
}

func (suite *orderRepositorySuite) TestGetMissing() {
	_, err := suite.repo.GetOrderByID(suite.T().Context(), uuid.New())
	suite.ErrorIs(err, repository.ErrNotFound)
}

func (suite *orderRepositorySuite) TestFailedWriteLeavesNothing() {
	t := suite.T()
	ctx := t.Context()

	o := orderfixture.Order()
	o.Format = "yaml"

	require.Error(t, suite.repo.PutOrder(ctx, o))

	_, err := suite.repo.GetOrderByID(ctx, o.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
