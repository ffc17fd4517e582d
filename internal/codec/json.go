package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

// ParseJSON decodes, validates and builds an order from a JSON payload.
// Numbers are never decoded into float64.
func ParseJSON(data []byte) (domain.Order, error) {
	doc, err := decodeJSON(data)
	if err != nil {
		return domain.Order{}, err
	}
	return fromDocument(doc, domain.FormatJSON)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &domain.JSONParseError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &domain.JSONParseError{Err: errors.New("unexpected data after top-level value")}
	}
	return doc, nil
}

type jsonAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type jsonItem struct {
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	Subtotal    json.Number `json:"subtotal"`
}

type jsonOrder struct {
	ID              string      `json:"id"`
	CustomerID      string      `json:"customer_id"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerName    string      `json:"customer_name"`
	BillingAddress  jsonAddress `json:"billing_address"`
	ShippingAddress jsonAddress `json:"shipping_address"`
	Items           []jsonItem  `json:"items"`
	TotalAmount     json.Number `json:"total_amount"`
	PaymentMethod   string      `json:"payment_method"`
	Status          string      `json:"status"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       *string     `json:"updated_at,omitempty"`
	PaymentID       *string     `json:"payment_id,omitempty"`
	TrackingNumber  *string     `json:"tracking_number,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
}

// EncodeJSON renders a canonical order in the inbound JSON shape, with the generated
// id and created_at filled in, so ParseJSON of the result yields the same order.
func EncodeJSON(o domain.Order) ([]byte, error) {
	w := jsonOrder{
		ID:              o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		CustomerEmail:   o.CustomerEmail,
		CustomerName:    o.CustomerName,
		BillingAddress:  jsonAddress(o.BillingAddress),
		ShippingAddress: jsonAddress(o.ShippingAddress),
		TotalAmount:     json.Number(o.TotalAmount.String()),
		PaymentMethod:   string(o.PaymentMethod),
		Status:          string(o.Status),
		CreatedAt:       domain.FormatTimestamp(o.CreatedAt),
		PaymentID:       o.PaymentID,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
	}
	if o.UpdatedAt != nil {
		w.UpdatedAt = lo.ToPtr(domain.FormatTimestamp(*o.UpdatedAt))
	}
	w.Items = lo.Map(o.Items, func(it domain.OrderItem, _ int) jsonItem {
		return jsonItem{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   json.Number(it.UnitPrice.String()),
			Subtotal:    json.Number(it.Subtotal.String()),
		}
	})

	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return b, nil
}
