package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), KES)
		require.NoError(t, err)
		assert.Equal(t, KES, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("123.45")
	require.NoError(t, err)
	assert.Equal(t, KES, m.Currency())
	assert.Equal(t, "123.45", m.String())

	_, err = ParseMoney("twelve")
	assert.Error(t, err)
}

func TestRoundCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.345", "2.35"},
		{"-2.345", "-2.35"},
		{"2.344", "2.34"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"2500", "2500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundCurrency(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := KESAmount(decimal.NewFromInt(100))
	b := KESAmount(decimal.RequireFromString("25.50"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "125.50", sum.String())

	diff, err := b.Subtract(a)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.Equal(t, "-74.50", diff.String())

	_, err = a.Add(Zero(USD))
	assert.Error(t, err)

	assert.Equal(t, "2550.00", b.Multiply(decimal.NewFromInt(100)).String())
}

func TestMoney_Format(t *testing.T) {
	assert.Equal(t, "KES 2,500.00", KESAmount(decimal.NewFromInt(2500)).Format())
	assert.Equal(t, "KES 0.50", KESAmount(decimal.RequireFromString("0.5")).Format())
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(KESAmount(decimal.RequireFromString("12.005")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.01","currency":"KES"}`, string(data))
}

func TestMoney_ValueScan(t *testing.T) {
	v, err := KESAmount(decimal.RequireFromString("99.999")).Value()
	require.NoError(t, err)
	assert.Equal(t, "100.00", v)

	var m Money
	require.NoError(t, m.Scan("42.10"))
	assert.Equal(t, KES, m.Currency())
	assert.Equal(t, "42.10", m.String())
}
