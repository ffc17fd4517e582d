// Package schema holds the order schema as an explicit rule table and evaluates it
// against generic documents decoded from JSON or converted from XML.
package schema

import (
	"regexp"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

type Format string

const (
	FormatNone     Format = ""
	FormatEmail    Format = "email"
	FormatDateTime Format = "date-time"
)

// Rule describes one property. Object is used for KindObject and as the element
// schema of KindArray. Every Object rejects properties it does not list.
type Rule struct {
	Field     string
	Kind      Kind
	Required  bool
	MinLength int
	Pattern   *regexp.Regexp
	Format    Format
	Enum      []string
	Minimum   *decimal.Decimal
	MinItems  int
	Object    *Object
}

type Object struct {
	Name  string
	Rules []Rule
}

func (o *Object) rule(field string) (Rule, bool) {
	for _, r := range o.Rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

var (
	uuidPattern       = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

var Address = &Object{
	Name: "address",
	Rules: []Rule{
		{Field: "street", Kind: KindString, Required: true, MinLength: 1},
		{Field: "city", Kind: KindString, Required: true, MinLength: 1},
		{Field: "state", Kind: KindString, Required: true, MinLength: 2},
		{Field: "postal_code", Kind: KindString, Required: true, Pattern: postalCodePattern},
		{Field: "country", Kind: KindString, Required: true, MinLength: 2},
	},
}

var Item = &Object{
	Name: "item",
	Rules: []Rule{
		{Field: "product_id", Kind: KindString, Required: true, Pattern: uuidPattern},
		{Field: "product_name", Kind: KindString, Required: true, MinLength: 1},
		{Field: "quantity", Kind: KindInteger, Required: true, Minimum: &one},
		{Field: "unit_price", Kind: KindNumber, Required: true, Minimum: &zero},
		{Field: "subtotal", Kind: KindNumber, Required: true, Minimum: &zero},
	},
}

var Statuses = []string{"PENDING", "PAID", "PROCESSING", "SHIPPED", "DELIVERED", "CANCELLED"}

var PaymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer"}

// Order is the top-level order schema.
var Order = &Object{
	Name: "order",
	Rules: []Rule{
		{Field: "id", Kind: KindString, Pattern: uuidPattern},
		{Field: "customer_id", Kind: KindString, Required: true, Pattern: uuidPattern},
		{Field: "customer_email", Kind: KindString, Required: true, Format: FormatEmail},
		{Field: "customer_name", Kind: KindString, Required: true, MinLength: 1},
		{Field: "billing_address", Kind: KindObject, Required: true, Object: Address},
		{Field: "shipping_address", Kind: KindObject, Required: true, Object: Address},
		{Field: "items", Kind: KindArray, Required: true, MinItems: 1, Object: Item},
		{Field: "total_amount", Kind: KindNumber, Required: true, Minimum: &zero},
		{Field: "status", Kind: KindString, Enum: Statuses},
		{Field: "created_at", Kind: KindString, Format: FormatDateTime},
		{Field: "updated_at", Kind: KindString, Format: FormatDateTime},
		{Field: "payment_method", Kind: KindString, Required: true, Enum: PaymentMethods},
		{Field: "payment_id", Kind: KindString},
		{Field: "tracking_number", Kind: KindString},
		{Field: "notes", Kind: KindString},
	},
}
