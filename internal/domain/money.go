package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fields that carry money or quantities. Their values are parsed as exact decimals,
// never as binary floats.
const (
	FieldUnitPrice   = "unit_price"
	FieldSubtotal    = "subtotal"
	FieldTotalAmount = "total_amount"
	FieldQuantity    = "quantity"
)

var numericFields = map[string]struct{}{
	FieldUnitPrice:   {},
	FieldSubtotal:    {},
	FieldTotalAmount: {},
	FieldQuantity:    {},
}

func IsNumericField(name string) bool {
	_, ok := numericFields[name]
	return ok
}

// MalformedNumberError keeps the raw text that failed to parse.
type MalformedNumberError struct {
	Raw string
	Err error
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q", e.Raw)
}

func (e *MalformedNumberError) Unwrap() error { return ErrMalformedNumber }

// ParseDecimal also rejects literals whose exponent lies outside ±maxExponent.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &MalformedNumberError{Raw: raw, Err: err}
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, &MalformedNumberError{Raw: raw, Err: fmt.Errorf("exponent %d out of range", exp)}
	}
	return d, nil
}

const maxExponent = 64

// ParseQuantity accepts integral decimals only ("2", "2.0"); "2.5" is malformed.
func ParseQuantity(raw string) (int64, error) {
	d, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return DecimalToQuantity(d, raw)
}

func DecimalToQuantity(d decimal.Decimal, raw string) (int64, error) {
	if !d.IsInteger() {
		return 0, &MalformedNumberError{Raw: raw, Err: fmt.Errorf("not an integer")}
	}
	if d.GreaterThan(decimal.NewFromInt(maxQuantity)) || d.LessThan(decimal.NewFromInt(-maxQuantity)) {
		return 0, &MalformedNumberError{Raw: raw, Err: fmt.Errorf("out of range")}
	}
	return d.IntPart(), nil
}

const maxQuantity = 1<<53 - 1

// LineTotal is quantity * unitPrice computed exactly.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(quantity).Mul(unitPrice)
}
