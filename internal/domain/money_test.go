package domain_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantError bool
	}{
		{name: "plain: ok", raw: "19.99", want: "19.99"},
		{name: "integer: ok", raw: "20", want: "20"},
		{name: "exponent: ok", raw: "1.5e2", want: "150"},
		{name: "negative: ok", raw: "-0.01", want: "-0.01"},
		{name: "letters: fail", raw: "ten", wantError: true},
		{name: "empty: fail", raw: "", wantError: true},
		{name: "two dots: fail", raw: "1.2.3", wantError: true},
		{name: "largest exponent: ok", raw: "1e64", want: "1e64"},
		{name: "smallest exponent: ok", raw: "1e-64", want: "1e-64"},
		{name: "huge exponent: fail", raw: "1e1000000000", wantError: true},
		{name: "tiny exponent: fail", raw: "1e-1000000000", wantError: true},
		{name: "too many decimal places: fail", raw: "0." + strings.Repeat("0", 64) + "1", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := domain.ParseDecimal(tt.raw)
			if tt.wantError {
				require.ErrorIs(t, err, domain.ErrMalformedNumber)
				var mn *domain.MalformedNumberError
				require.ErrorAs(t, err, &mn)
				assert.Equal(t, tt.raw, mn.Raw)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := domain.ParseQuantity("2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, q)

	q, err = domain.ParseQuantity("3.0")
	require.NoError(t, err)
	assert.EqualValues(t, 3, q)

	_, err = domain.ParseQuantity("2.5")
	assert.ErrorIs(t, err, domain.ErrMalformedNumber)

	_, err = domain.ParseQuantity("99999999999999999999")
	assert.ErrorIs(t, err, domain.ErrMalformedNumber)
}

// 0.1 + 0.2 style sums must stay exact.
func TestLineTotalIsExact(t *testing.T) {
	price := decimal.RequireFromString("19.99")
	assert.True(t, domain.LineTotal(3, price).Equal(decimal.RequireFromString("59.97")))

	o := domain.Order{Items: []domain.OrderItem{
		{Subtotal: decimal.RequireFromString("0.1")},
		{Subtotal: decimal.RequireFromString("0.2")},
	}}
	assert.True(t, o.ItemsTotal().Equal(decimal.RequireFromString("0.3")))
}

func TestIsNumericField(t *testing.T) {
	for _, f := range []string{"unit_price", "subtotal", "total_amount", "quantity"} {
		assert.True(t, domain.IsNumericField(f), f)
	}
	assert.False(t, domain.IsNumericField("postal_code"))
}
