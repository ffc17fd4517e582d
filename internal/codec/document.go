// Package codec parses JSON and XML order payloads into the canonical order model
// and encodes canonical orders back into either wire format.
//
// Both formats are first reduced to a generic document (maps, slices, strings and
// exact numbers), validated against the schema table, and only then built into an
// order, so they share one set of validation rules.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/RaikyD/orders-intake-service/internal/domain"
	"github.com/RaikyD/orders-intake-service/internal/schema"
)

// fromDocument validates a generic document and builds an Order from it.
func fromDocument(doc any, format domain.Format) (domain.Order, error) {
	if violations := schema.Validate(doc); len(violations) > 0 {
		return domain.Order{}, &domain.SchemaValidationError{Violations: violations}
	}

	r := &docReader{}
	draft := r.draft(doc.(map[string]any))
	if len(r.violations) > 0 {
		return domain.Order{}, &domain.SchemaValidationError{Violations: r.violations}
	}

	o, err := draft.Validate()
	if err != nil {
		return domain.Order{}, err
	}
	o.Format = format
	return o, nil
}

// docReader pulls typed values out of a document that already passed the schema.
// Number conversion can still fail (e.g. a quantity out of range); those failures are
// collected as field-level violations carrying the raw text.
type docReader struct {
	violations []domain.Violation
}

func (r *docReader) draft(m map[string]any) domain.OrderDraft {
	d := domain.OrderDraft{
		ID:              str(m, "id"),
		CustomerID:      str(m, "customer_id"),
		CustomerEmail:   str(m, "customer_email"),
		CustomerName:    str(m, "customer_name"),
		BillingAddress:  address(m["billing_address"]),
		ShippingAddress: address(m["shipping_address"]),
		TotalAmount:     r.decimal(m, domain.FieldTotalAmount, domain.FieldTotalAmount),
		PaymentMethod:   str(m, "payment_method"),
		Status:          str(m, "status"),
		CreatedAt:       str(m, "created_at"),
		UpdatedAt:       optStr(m, "updated_at"),
		PaymentID:       optStr(m, "payment_id"),
		TrackingNumber:  optStr(m, "tracking_number"),
		Notes:           optStr(m, "notes"),
	}

	items, _ := m["items"].([]any)
	for i, raw := range items {
		im, _ := raw.(map[string]any)
		path := fmt.Sprintf("items[%d]", i)
		d.Items = append(d.Items, domain.ItemDraft{
			ProductID:   str(im, "product_id"),
			ProductName: str(im, "product_name"),
			Quantity:    r.quantity(im, path+"."+domain.FieldQuantity),
			UnitPrice:   r.decimal(im, domain.FieldUnitPrice, path+"."+domain.FieldUnitPrice),
			Subtotal:    r.decimal(im, domain.FieldSubtotal, path+"."+domain.FieldSubtotal),
		})
	}
	return d
}

func (r *docReader) decimal(m map[string]any, key, path string) decimal.Decimal {
	switch v := m[key].(type) {
	case decimal.Decimal:
		return v
	case json.Number:
		d, err := domain.ParseDecimal(v.String())
		if err != nil {
			r.malformed(path, err)
		}
		return d
	case string:
		d, err := domain.ParseDecimal(v)
		if err != nil {
			r.malformed(path, err)
		}
		return d
	}
	return decimal.Zero
}

func (r *docReader) quantity(m map[string]any, path string) int64 {
	d := r.decimal(m, domain.FieldQuantity, path)
	q, err := domain.DecimalToQuantity(d, d.String())
	if err != nil {
		r.malformed(path, err)
	}
	return q
}

func (r *docReader) malformed(path string, err error) {
	r.violations = append(r.violations, domain.Violation{Path: path, Rule: "type", Message: err.Error()})
}

func address(v any) domain.Address {
	m, _ := v.(map[string]any)
	return domain.Address{
		Street:     str(m, "street"),
		City:       str(m, "city"),
		State:      str(m, "state"),
		PostalCode: str(m, "postal_code"),
		Country:    str(m, "country"),
	}
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func optStr(m map[string]any, key string) *string {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &s
}
