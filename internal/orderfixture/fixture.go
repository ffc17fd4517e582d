// Package orderfixture builds valid random orders and their wire documents, for tests
// and the demo order generator.
package orderfixture

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

func Address() domain.Address {
	return domain.Address{
		Street:     gofakeit.Street(),
		City:       gofakeit.City(),
		State:      gofakeit.StateAbr(),
		PostalCode: fmt.Sprintf("%05d", gofakeit.Number(0, 99999)),
		Country:    gofakeit.CountryAbr(),
	}
}

func Item() domain.OrderItem {
	qty := int64(gofakeit.Number(1, 5))
	price := decimal.New(int64(gofakeit.Number(1, 99999)), -2)
	return domain.OrderItem{
		ProductID:   uuid.MustParse(gofakeit.UUID()),
		ProductName: gofakeit.ProductName(),
		Quantity:    qty,
		UnitPrice:   price,
		Subtotal:    domain.LineTotal(qty, price),
	}
}

// Order returns a valid order with 1-3 items whose arithmetic adds up.
func Order() domain.Order {
	items := make([]domain.OrderItem, gofakeit.Number(1, 3))
	for i := range items {
		items[i] = Item()
	}
	o := domain.Order{
		ID:              uuid.MustParse(gofakeit.UUID()),
		CustomerID:      uuid.MustParse(gofakeit.UUID()),
		CustomerEmail:   strings.ToLower(gofakeit.LetterN(10)) + "@example.com",
		CustomerName:    gofakeit.Name(),
		BillingAddress:  Address(),
		ShippingAddress: Address(),
		Items:           items,
		PaymentMethod:   domain.PaymentCreditCard,
		Status:          domain.StatusPending,
		CreatedAt:       gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).UTC().Truncate(time.Microsecond),
		Notes:           lo.ToPtr(gofakeit.Sentence(5)),
	}
	o.TotalAmount = o.ItemsTotal()
	return o
}

// Document returns the decoded form of JSONScenarioA, as a UseNumber decoder
// would produce it. Callers may mutate the result.
func Document() map[string]any {
	return map[string]any{
		"id":             "3f1c2a9e-8b7d-4c6e-9a5f-1b2c3d4e5f60",
		"customer_id":    "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
		"customer_email": "jane.doe@example.com",
		"customer_name":  "Jane Doe",
		"billing_address": map[string]any{
			"street":      "1 Main St",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62701",
			"country":     "US",
		},
		"shipping_address": map[string]any{
			"street":      "2 Side Ave",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62702-1234",
			"country":     "US",
		},
		"items": []any{
			map[string]any{
				"product_id":   "0f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a",
				"product_name": "Widget",
				"quantity":     json.Number("2"),
				"unit_price":   json.Number("10.00"),
				"subtotal":     json.Number("20.00"),
			},
		},
		"total_amount":   json.Number("20.00"),
		"payment_method": "credit_card",
		"created_at":     "2024-05-01T12:00:00Z",
	}
}

const JSONScenarioA = `{
  "id": "3f1c2a9e-8b7d-4c6e-9a5f-1b2c3d4e5f60",
  "customer_id": "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d",
  "customer_email": "jane.doe@example.com",
  "customer_name": "Jane Doe",
  "billing_address": {"street": "1 Main St", "city": "Springfield", "state": "IL", "postal_code": "62701", "country": "US"},
  "shipping_address": {"street": "2 Side Ave", "city": "Springfield", "state": "IL", "postal_code": "62702-1234", "country": "US"},
  "items": [
    {"product_id": "0f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a", "product_name": "Widget", "quantity": 2, "unit_price": 10.00, "subtotal": 20.00}
  ],
  "total_amount": 20.00,
  "payment_method": "credit_card",
  "created_at": "2024-05-01T12:00:00Z"
}`

const XMLScenarioB = `<?xml version="1.0" encoding="UTF-8"?>
<order>
  <id>3f1c2a9e-8b7d-4c6e-9a5f-1b2c3d4e5f60</id>
  <customer_id>a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d</customer_id>
  <customer_email>jane.doe@example.com</customer_email>
  <customer_name>Jane Doe</customer_name>
  <billing_address>
    <street>1 Main St</street>
    <city>Springfield</city>
    <state>IL</state>
    <postal_code>62701</postal_code>
    <country>US</country>
  </billing_address>
  <shipping_address>
    <street>2 Side Ave</street>
    <city>Springfield</city>
    <state>IL</state>
    <postal_code>62702-1234</postal_code>
    <country>US</country>
  </shipping_address>
  <items>
    <item>
      <product_id>0f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a</product_id>
      <product_name>Widget</product_name>
      <quantity>2</quantity>
      <unit_price>10.00</unit_price>
      <subtotal>20.00</subtotal>
    </item>
  </items>
  <total_amount>20.00</total_amount>
  <payment_method>credit_card</payment_method>
  <created_at>2024-05-01T12:00:00Z</created_at>
</order>`
