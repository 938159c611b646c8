package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a caller gives no explicit currency.
const DefaultCurrency = "JPY"

// Money is an immutable amount in a single currency. Arithmetic between
// two Money values requires equal currencies; a mismatch returns
// ErrCurrencyMismatch, never a silent coercion.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// NewMoneyFromInt builds Money from a whole-unit amount, e.g. 1000 JPY.
func NewMoneyFromInt(amount int64, currency string) Money {
	return NewMoney(decimal.NewFromInt(amount), currency)
}

// ZeroMoney is the additive identity in the given currency.
func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Mul scales by a dimensionless factor; no currency check applies.
func (m Money) Mul(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: m.currency}
}

// Cmp orders two same-currency amounts (-1, 0, +1).
// Ordering across currencies is undefined and fails.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.checkCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal compares (amount, currency) pairs. Unlike Cmp it never fails:
// different currencies are simply not equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}

func (m Money) checkCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}
