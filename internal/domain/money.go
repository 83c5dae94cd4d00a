package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise). All arithmetic stays in
// integers so that a charged amount and its refund are always identical.
type Money int64

const minorDigits = 2

var (
	ErrInvalidAmount = errors.New("invalid money amount")

	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// NewMoney builds a Money value from whole units and minor units.
func NewMoney(major, minor int64) Money {
	return Money(major*100 + minor)
}

// FromDecimal converts d to Money. d must not carry more than two decimals.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.Exponent() < -minorDigits {
		return 0, fmt.Errorf("%w: more than two decimal places in %s", ErrInvalidAmount, d)
	}
	minor := d.Shift(minorDigits)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("%w: %s overflows", ErrInvalidAmount, d)
	}
	return Money(minor.IntPart()), nil
}

// ParseMoney parses a plain decimal string with at most two fractional digits.
// Only a leading sign is allowed and exponent notation is rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") || strings.ContainsAny(s[1:], "+-") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -minorDigits)
}

// ApplyPercent returns m increased by pct percent, rounded half away from zero
// to the nearest minor unit.
func (m Money) ApplyPercent(pct float64) Money {
	factor := decimal.NewFromFloat(pct).Shift(-2).Add(decimal.NewFromInt(1))
	return Money(m.Decimal().Mul(factor).Round(minorDigits).Shift(minorDigits).IntPart())
}

func (m Money) String() string {
	return m.Decimal().StringFixed(minorDigits)
}

// Float is for display only.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
