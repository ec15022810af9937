package money

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"go-unihr/internal/shared/apperror"
)

// CurrencyTRY is the only currency the payroll engine operates in.
const CurrencyTRY = "TRY"

var ErrCurrencyMismatch = apperror.New(
	apperror.CodeInvalidInput,
	"cannot operate on money values with different currencies",
	http.StatusBadRequest,
)

// Money is an immutable amount + currency pair. Every operation returns a new
// value; operands must share the same currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func New(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

func TRY(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: CurrencyTRY}
}

func TRYFromFloat(v float64) Money {
	return TRY(decimal.NewFromFloat(v))
}

func TRYFromInt(v int64) Money {
	return TRY(decimal.NewFromInt(v))
}

func FromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, apperror.Wrap(err, apperror.CodeInvalidInput, "invalid money amount", http.StatusBadRequest)
	}
	if currency == "" {
		currency = CurrencyTRY
	}
	return Money{amount: d, currency: currency}, nil
}

func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string       { return m.currency }

func (m Money) checkCurrency(other Money) error {
	if m.currency != other.currency {
		return ErrCurrencyMismatch
	}
	return nil
}

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

// Mul scales the amount by a dimensionless factor (rates, quantities).
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Div divides the amount by a dimensionless divisor. Division keeps
// shopspring's default 16-digit precision; callers round at presentation.
func (m Money) Div(divisor decimal.Decimal) Money {
	return Money{amount: m.amount.Div(divisor), currency: m.currency}
}

// Round returns the value rounded half-up to two decimal places, the
// resolution statutory amounts are reported in.
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(2), currency: m.currency}
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) Cmp(other Money) (int, error) {
	if err := m.checkCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
