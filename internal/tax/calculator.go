package tax

import (
	"net/http"

	"github.com/shopspring/decimal"

	"go-unihr/internal/money"
	"go-unihr/internal/shared/apperror"
)

var (
	ErrNonTRYIncome = apperror.New(
		apperror.CodeInvalidInput,
		"income tax is computed on TRY amounts only",
		http.StatusBadRequest,
	)
	ErrInvalidDiscountRate = apperror.New(
		apperror.CodeInvalidInput,
		"tax discount rate must be between 0 and 1",
		http.StatusBadRequest,
	)
)

// Assessment is the outcome of running taxable income through the brackets.
type Assessment struct {
	Tax          money.Money
	MarginalRate decimal.Decimal
}

// Withholding is the full statutory tax picture for one gross salary:
// bracket-based income tax plus the flat stamp duty, after any discount.
type Withholding struct {
	TaxableIncome money.Money
	IncomeTax     money.Money
	StampDuty     money.Money
	Discount      money.Money
	TotalTax      money.Money
	MarginalRate  decimal.Decimal
	TableVersion  string
	// UsedGrossFallback marks the taxable-income<=0 quirk: when social
	// insurance deductions consume the whole gross, tax falls back to the
	// gross salary as its base. Kept for payroll line-item diagnostics.
	UsedGrossFallback bool
}

// Calculator computes progressive income tax against one bracket table.
// It is stateless and safe to share across goroutines.
type Calculator struct {
	table BracketTable
}

func NewCalculator(table BracketTable) Calculator {
	return Calculator{table: table}
}

func (c Calculator) TableVersion() string { return c.table.Version() }

// Compute evaluates taxable income against the schedule: the containing
// bracket's cumulative base plus the marginal rate applied to the excess
// over the bracket floor.
func (c Calculator) Compute(taxableIncome money.Money) (Assessment, error) {
	if taxableIncome.Currency() != money.CurrencyTRY {
		return Assessment{}, ErrNonTRYIncome
	}

	amount := taxableIncome.Amount()
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	b := c.table.bracketFor(amount)
	owed := b.CumulativeBase.Add(amount.Sub(b.Min).Mul(b.Rate))

	return Assessment{
		Tax:          money.TRY(owed).Round(),
		MarginalRate: b.Rate,
	}, nil
}

// StampDuty is the flat-rate levy on the gross, not taxable, salary.
func StampDuty(gross money.Money) money.Money {
	return gross.Mul(StampDutyRate).Round()
}

// ComputeWithholding combines income tax and stamp duty for one gross salary.
// Taxable income is gross minus the employee's social insurance contribution;
// when that difference is not positive the gross salary itself is used as the
// base. An optional discountRate in [0,1] reduces the combined tax, floored
// at zero.
func (c Calculator) ComputeWithholding(
	gross money.Money,
	employeeInsurance money.Money,
	discountRate decimal.Decimal,
) (Withholding, error) {
	if discountRate.IsNegative() || discountRate.GreaterThan(decimal.NewFromInt(1)) {
		return Withholding{}, ErrInvalidDiscountRate
	}

	taxable, err := gross.Sub(employeeInsurance)
	if err != nil {
		return Withholding{}, err
	}

	usedFallback := false
	if !taxable.IsPositive() {
		taxable = gross
		usedFallback = true
	}

	assessment, err := c.Compute(taxable)
	if err != nil {
		return Withholding{}, err
	}

	stamp := StampDuty(gross)
	total, err := assessment.Tax.Add(stamp)
	if err != nil {
		return Withholding{}, err
	}

	discount := total.Mul(discountRate).Round()
	discounted, err := total.Sub(discount)
	if err != nil {
		return Withholding{}, err
	}
	if discounted.IsNegative() {
		discounted = money.Zero(money.CurrencyTRY)
	}

	return Withholding{
		TaxableIncome:     taxable,
		IncomeTax:         assessment.Tax,
		StampDuty:         stamp,
		Discount:          discount,
		TotalTax:          discounted,
		MarginalRate:      assessment.MarginalRate,
		TableVersion:      c.table.Version(),
		UsedGrossFallback: usedFallback,
	}, nil
}
