package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

var _ OrderRepo = (*OrderRepository)(nil)

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

// PutOrder upserts the order row and replaces its items in one transaction.
// Numeric columns are NUMERIC and are written from the exact decimal text.
func (p *OrderRepository) PutOrder(ctx context.Context, o domain.Order) error {
	return p.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO orders
				(id, format, customer_id, customer_email, customer_name,
				 billing_address, shipping_address, total_amount, payment_method, status,
				 created_at, updated_at, payment_id, tracking_number, notes)
			 VALUES
				($1, $2, $3, $4, $5,
				 $6, $7, $8, $9, $10,
				 $11, $12, $13, $14, $15)
			 ON CONFLICT (id) DO UPDATE SET
				format = EXCLUDED.format,
				customer_id = EXCLUDED.customer_id,
				customer_email = EXCLUDED.customer_email,
				customer_name = EXCLUDED.customer_name,
				billing_address = EXCLUDED.billing_address,
				shipping_address = EXCLUDED.shipping_address,
				total_amount = EXCLUDED.total_amount,
				payment_method = EXCLUDED.payment_method,
				status = EXCLUDED.status,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at,
				payment_id = EXCLUDED.payment_id,
				tracking_number = EXCLUDED.tracking_number,
				notes = EXCLUDED.notes`,
			o.ID,
			string(o.Format),
			o.CustomerID,
			o.CustomerEmail,
			o.CustomerName,
			o.BillingAddress,
			o.ShippingAddress,
			o.TotalAmount.String(),
			string(o.PaymentMethod),
			string(o.Status),
			o.CreatedAt,
			o.UpdatedAt,
			o.PaymentID,
			o.TrackingNumber,
			o.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert orders: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
			return fmt.Errorf("delete order_items: %w", err)
		}

		batch := &pgx.Batch{}
		for i, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items
					(order_id, position, product_id, product_name, quantity, unit_price, subtotal)
				VALUES
					($1, $2, $3, $4, $5, $6, $7)
			`,
				o.ID,
				i,
				it.ProductID,
				it.ProductName,
				it.Quantity,
				it.UnitPrice.String(),
				it.Subtotal.String(),
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("insert order_items: %w", err)
		}
		return nil
	})
}

func (p *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var (
		o      domain.Order
		format string
		method string
		status string
		total  string
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, format, customer_id, customer_email, customer_name,
				billing_address, shipping_address, total_amount::text, payment_method, status,
				created_at, updated_at, payment_id, tracking_number, notes
		 FROM orders WHERE id = $1`, id,
	).Scan(
		&o.ID, &format, &o.CustomerID, &o.CustomerEmail, &o.CustomerName,
		&o.BillingAddress, &o.ShippingAddress, &total, &method, &status,
		&o.CreatedAt, &o.UpdatedAt, &o.PaymentID, &o.TrackingNumber, &o.Notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select orders: %w", err)
	}
	o.Format = domain.Format(format)
	o.PaymentMethod = domain.PaymentMethod(method)
	o.Status = domain.Status(status)
	o.CreatedAt = o.CreatedAt.UTC()
	if o.UpdatedAt != nil {
		ts := o.UpdatedAt.UTC()
		o.UpdatedAt = &ts
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("total_amount: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT product_id, product_name, quantity, unit_price::text, subtotal::text
		 FROM order_items WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it              domain.OrderItem
			price, subtotal string
		)
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &price, &subtotal); err != nil {
			return nil, fmt.Errorf("scan order_items: %w", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("unit_price: %w", err)
		}
		if it.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("subtotal: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return &o, nil
}

// withTx commits when fn succeeds and rolls back otherwise, so an interrupted write
// leaves no partial order behind.
func (p *OrderRepository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (txErr error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}
	return nil
}
