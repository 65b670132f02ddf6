package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	KES Currency = "KES" // Kenyan Shilling (default)
	USD Currency = "USD"
)

// DefaultCurrency is the currency bills and payments are denominated in
const DefaultCurrency = KES

// CurrencyPlaces is the stored precision of every monetary amount
const CurrencyPlaces int32 = 2

// Money is an immutable monetary amount
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money from an amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// KESAmount wraps a decimal in the default currency
func KESAmount(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: KES}
}

// ParseMoney parses a decimal string in the default currency
func ParseMoney(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return KESAmount(d), nil
}

// Zero returns zero in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns the sum; currencies must match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference; currencies must match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Equals returns true if both amount and currency match
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns the amount with two fraction digits, e.g. "2500.00"
func (m Money) String() string {
	return RoundCurrency(m.amount).StringFixed(CurrencyPlaces)
}

// Format renders the amount for display with grouping, e.g. "KES 2,500.00"
func (m Money) Format() string {
	f, _ := RoundCurrency(m.amount).Float64()
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s %v", string(m.currency), number.Decimal(f, number.Scale(int(CurrencyPlaces))))
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.String(),
		Currency: m.currency,
	})
}

// Value implements driver.Valuer, storing only the amount
func (m Money) Value() (driver.Value, error) {
	return RoundCurrency(m.amount).StringFixed(CurrencyPlaces), nil
}

// Scan implements sql.Scanner; the currency is always the default
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	m.amount = d
	m.currency = DefaultCurrency
	return nil
}

// RoundCurrency rounds half away from zero to two decimals.
// decimal.Round already rounds halves away from zero (-2.345 -> -2.35).
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}
