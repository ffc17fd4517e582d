package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

// remember to add new statuses to the validStatuses map
const (
	StatusPending    Status = "PENDING"
	StatusPaid       Status = "PAID"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var validStatuses = map[Status]struct{}{
	StatusPending:    {},
	StatusPaid:       {},
	StatusProcessing: {},
	StatusShipped:    {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func ToStatus(s string) (Status, error) {
	status := Status(s)
	if _, ok := validStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid order status")
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentCreditCard:   {},
	PaymentDebitCard:    {},
	PaymentPaypal:       {},
	PaymentBankTransfer: {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if _, ok := validPaymentMethods[m]; ok {
		return m, nil
	}
	return "", errors.New("invalid payment method")
}

// Format is the wire encoding an order arrived in. It is assigned at persistence time.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Order is the canonical, validated representation of an order. Values of this type
// are produced by OrderDraft.Validate; both arithmetic invariants hold for them.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerName    string          `json:"customer_name"`
	BillingAddress  Address         `json:"billing_address"`
	ShippingAddress Address         `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	PaymentID       *string         `json:"payment_id,omitempty"`
	TrackingNumber  *string         `json:"tracking_number,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	Format          Format          `json:"format,omitempty"`
}

// ItemsTotal sums item subtotals exactly.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}
