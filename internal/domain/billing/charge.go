package billing

import (
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultRatePerUnit is the tariff applied when a bill is created without an
// explicit rate.
var DefaultRatePerUnit = decimal.NewFromInt(50)

// Charge is the consumption and amount derived from two readings and a rate
type Charge struct {
	UnitsConsumed decimal.Decimal
	Amount        decimal.Decimal
}

// ComputeCharge derives units = current - previous and amount = units * rate,
// both rounded half away from zero to two decimals. A current reading below
// the previous one yields negative values; callers that must not accept that
// run ApplyReadingPolicy first.
func ComputeCharge(previous, current, rate decimal.Decimal) Charge {
	units := current.Sub(previous)
	return Charge{
		UnitsConsumed: valueobject.RoundCurrency(units),
		Amount:        valueobject.RoundCurrency(units.Mul(rate)),
	}
}

// ReadingPolicy decides what happens when the current reading is below the
// previous one (meter rollover or a data-entry error).
type ReadingPolicy string

const (
	// ReadingPolicyPreserve stores the negative consumption as entered
	ReadingPolicyPreserve ReadingPolicy = "preserve"
	// ReadingPolicyReject refuses the readings
	ReadingPolicyReject ReadingPolicy = "reject"
	// ReadingPolicyClamp raises the current reading to the previous one
	ReadingPolicyClamp ReadingPolicy = "clamp"
)

// IsValid checks if the policy is a known value
func (p ReadingPolicy) IsValid() bool {
	switch p {
	case ReadingPolicyPreserve, ReadingPolicyReject, ReadingPolicyClamp:
		return true
	}
	return false
}

// ApplyReadingPolicy returns the readings to store under policy
func ApplyReadingPolicy(policy ReadingPolicy, previous, current decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if current.GreaterThanOrEqual(previous) {
		return previous, current, nil
	}
	switch policy {
	case ReadingPolicyReject:
		return previous, current, shared.NewDomainError(shared.CodeNegativeConsumption,
			"Current reading cannot be lower than the previous reading")
	case ReadingPolicyClamp:
		return previous, previous, nil
	default:
		return previous, current, nil
	}
}

// Upper bounds of the stored columns: readings, units and amount are
// DECIMAL(12,2), the rate is DECIMAL(10,2).
var (
	MaxReading = decimal.RequireFromString("9999999999.99")
	MaxRate    = decimal.RequireFromString("99999999.99")
)

// ValidateReading rejects negative meter readings and values too large to store
func ValidateReading(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_READING", field+" cannot be negative")
	}
	if value.GreaterThan(MaxReading) {
		return shared.NewDomainError("INVALID_READING", field+" cannot exceed "+MaxReading.String())
	}
	return nil
}

// ValidateRate rejects negative tariffs and tariffs too large to store
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Rate per unit cannot be negative")
	}
	if rate.GreaterThan(MaxRate) {
		return shared.NewDomainError("INVALID_RATE", "Rate per unit cannot exceed "+MaxRate.String())
	}
	return nil
}

// ValidateCharge rejects a derived amount that does not fit its column
func ValidateCharge(c Charge) error {
	if c.Amount.Abs().GreaterThan(MaxReading) {
		return shared.NewDomainError("INVALID_AMOUNT", "Bill amount cannot exceed "+MaxReading.String())
	}
	return nil
}
