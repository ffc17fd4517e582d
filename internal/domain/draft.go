package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	newID = uuid.New
	now   = func() time.Time { return time.Now().UTC() }
)

type ItemDraft struct {
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// OrderDraft holds order fields taken from the wire before any invariant is checked.
// Empty ID, Status and CreatedAt get their defaults in Validate.
type OrderDraft struct {
	ID              string
	CustomerID      string
	CustomerEmail   string
	CustomerName    string
	BillingAddress  Address
	ShippingAddress Address
	Items           []ItemDraft
	TotalAmount     decimal.Decimal
	PaymentMethod   string
	Status          string
	CreatedAt       string
	UpdatedAt       *string
	PaymentID       *string
	TrackingNumber  *string
	Notes           *string
}

// Validate turns the draft into an Order. It reports every problem it finds:
// field problems as *SchemaValidationError, arithmetic mismatches as *InvariantViolation.
// Arithmetic is only checked once the fields themselves are sound.
func (d OrderDraft) Validate() (Order, error) {
	var (
		o          Order
		violations []Violation
		err        error
	)
	bad := func(path, rule, format string, args ...any) {
		violations = append(violations, Violation{Path: path, Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if d.ID == "" {
		o.ID = newID()
	} else if o.ID, err = uuid.Parse(d.ID); err != nil {
		bad("id", "format", "invalid uuid %q", d.ID)
	}
	if o.CustomerID, err = uuid.Parse(d.CustomerID); err != nil {
		bad("customer_id", "format", "invalid uuid %q", d.CustomerID)
	}
	if d.CustomerEmail == "" {
		bad("customer_email", "required", "is required")
	}
	if d.CustomerName == "" {
		bad("customer_name", "minLength", "must not be empty")
	}
	o.CustomerEmail = d.CustomerEmail
	o.CustomerName = d.CustomerName
	o.BillingAddress = d.BillingAddress
	o.ShippingAddress = d.ShippingAddress

	if len(d.Items) == 0 {
		bad("items", "minItems", "must contain at least 1 item")
	}
	o.Items = make([]OrderItem, 0, len(d.Items))
	for i, it := range d.Items {
		path := fmt.Sprintf("items[%d]", i)
		item := OrderItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
		if item.ProductID, err = uuid.Parse(it.ProductID); err != nil {
			bad(path+".product_id", "format", "invalid uuid %q", it.ProductID)
		}
		if it.ProductName == "" {
			bad(path+".product_name", "minLength", "must not be empty")
		}
		if it.Quantity < 1 {
			bad(path+".quantity", "minimum", "must be >= 1, got %d", it.Quantity)
		}
		if it.UnitPrice.IsNegative() {
			bad(path+".unit_price", "minimum", "must be >= 0, got %s", it.UnitPrice)
		}
		if it.Subtotal.IsNegative() {
			bad(path+".subtotal", "minimum", "must be >= 0, got %s", it.Subtotal)
		}
		o.Items = append(o.Items, item)
	}

	o.TotalAmount = d.TotalAmount
	if d.TotalAmount.IsNegative() {
		bad("total_amount", "minimum", "must be >= 0, got %s", d.TotalAmount)
	}
	if o.PaymentMethod, err = ToPaymentMethod(d.PaymentMethod); err != nil {
		bad("payment_method", "enum", "unknown payment method %q", d.PaymentMethod)
	}

	o.Status = StatusPending
	if d.Status != "" {
		if o.Status, err = ToStatus(d.Status); err != nil {
			bad("status", "enum", "unknown status %q", d.Status)
		}
	}

	o.CreatedAt = now().Truncate(time.Microsecond)
	if d.CreatedAt != "" {
		if o.CreatedAt, err = ParseTimestamp(d.CreatedAt); err != nil {
			bad("created_at", "format", "invalid date-time %q", d.CreatedAt)
		}
	}
	if d.UpdatedAt != nil {
		ts, err := ParseTimestamp(*d.UpdatedAt)
		if err != nil {
			bad("updated_at", "format", "invalid date-time %q", *d.UpdatedAt)
		}
		o.UpdatedAt = &ts
	}
	o.PaymentID = d.PaymentID
	o.TrackingNumber = d.TrackingNumber
	o.Notes = d.Notes

	if len(violations) > 0 {
		return Order{}, &SchemaValidationError{Violations: violations}
	}

	if err := CheckInvariants(o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// CheckInvariants verifies subtotal == quantity * unit_price for every item and
// total_amount == sum(subtotal), both with exact decimal equality.
func CheckInvariants(o Order) error {
	var mismatches []Mismatch
	for i, it := range o.Items {
		computed := LineTotal(it.Quantity, it.UnitPrice)
		if !it.Subtotal.Equal(computed) {
			mismatches = append(mismatches, Mismatch{
				Path:     fmt.Sprintf("items[%d].subtotal", i),
				Declared: it.Subtotal,
				Computed: computed,
			})
		}
	}
	if total := o.ItemsTotal(); !o.TotalAmount.Equal(total) {
		mismatches = append(mismatches, Mismatch{
			Path:     "total_amount",
			Declared: o.TotalAmount,
			Computed: total,
		})
	}
	if len(mismatches) > 0 {
		return &InvariantViolation{Mismatches: mismatches}
	}
	return nil
}

// ParseTimestamp keeps microsecond precision, the resolution of every store.
func ParseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC().Truncate(time.Microsecond), nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
