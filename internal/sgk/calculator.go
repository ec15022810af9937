package sgk

import (
	"net/http"

	"github.com/shopspring/decimal"

	"go-unihr/internal/money"
	"go-unihr/internal/shared/apperror"
)

var (
	ErrInvalidPremiumDays = apperror.New(
		apperror.CodeInvalidInput,
		"premium days must be between 1 and 31",
		http.StatusBadRequest,
	)
	ErrInvalidGrossSalary = apperror.New(
		apperror.CodeInvalidInput,
		"gross salary must be greater than zero",
		http.StatusBadRequest,
	)
)

// Tariff is one fiscal year's contribution rate set, versioned so a new
// year's schedule swaps in without touching the calculation.
type Tariff struct {
	Version                  string
	EmployeeRate             decimal.Decimal
	EmployerRate             decimal.Decimal
	EmployeeUnemploymentRate decimal.Decimal
	EmployerUnemploymentRate decimal.Decimal
}

// Turkey2025 is the 2025 Turkish SGK tariff.
func Turkey2025() Tariff {
	return Tariff{
		Version:                  "2025-TR-SGK-v1",
		EmployeeRate:             decimal.NewFromFloat(0.14),
		EmployerRate:             decimal.NewFromFloat(0.222),
		EmployeeUnemploymentRate: decimal.NewFromFloat(0.01),
		EmployerUnemploymentRate: decimal.NewFromFloat(0.02),
	}
}

// Contribution breaks out the employee and employer sides of the base scheme
// and unemployment insurance for one pay period.
type Contribution struct {
	Basis                money.Money
	Employee             money.Money
	Employer             money.Money
	EmployeeUnemployment money.Money
	EmployerUnemployment money.Money
	EmployeeTotal        money.Money
	EmployerTotal        money.Money
	EmployerCost         money.Money
	Exempt               bool
	TariffVersion        string
}

// Calculator computes contributions under one tariff. Stateless; share it.
type Calculator struct {
	tariff Tariff
}

func NewCalculator(tariff Tariff) Calculator {
	return Calculator{tariff: tariff}
}

func (c Calculator) TariffVersion() string { return c.tariff.Version }

// Compute pro-rates the gross salary to a 30-day month and applies the four
// tariff rates to the resulting basis. Uninsured employees get an exempt
// all-zero result whose employer cost is just the gross salary.
func (c Calculator) Compute(gross money.Money, premiumDays int, insured bool) (Contribution, error) {
	if premiumDays < 1 || premiumDays > 31 {
		return Contribution{}, ErrInvalidPremiumDays
	}
	if !gross.IsPositive() {
		return Contribution{}, ErrInvalidGrossSalary
	}

	currency := gross.Currency()
	if !insured {
		zero := money.Zero(currency)
		return Contribution{
			Basis:                zero,
			Employee:             zero,
			Employer:             zero,
			EmployeeUnemployment: zero,
			EmployerUnemployment: zero,
			EmployeeTotal:        zero,
			EmployerTotal:        zero,
			EmployerCost:         gross,
			Exempt:               true,
			TariffVersion:        c.tariff.Version,
		}, nil
	}

	basis := gross.Div(decimal.NewFromInt(30)).Mul(decimal.NewFromInt(int64(premiumDays)))

	employee := basis.Mul(c.tariff.EmployeeRate).Round()
	employer := basis.Mul(c.tariff.EmployerRate).Round()
	employeeUnemp := basis.Mul(c.tariff.EmployeeUnemploymentRate).Round()
	employerUnemp := basis.Mul(c.tariff.EmployerUnemploymentRate).Round()

	employeeTotal, err := employee.Add(employeeUnemp)
	if err != nil {
		return Contribution{}, err
	}
	employerTotal, err := employer.Add(employerUnemp)
	if err != nil {
		return Contribution{}, err
	}
	employerCost, err := gross.Add(employerTotal)
	if err != nil {
		return Contribution{}, err
	}

	return Contribution{
		Basis:                basis.Round(),
		Employee:             employee,
		Employer:             employer,
		EmployeeUnemployment: employeeUnemp,
		EmployerUnemployment: employerUnemp,
		EmployeeTotal:        employeeTotal,
		EmployerTotal:        employerTotal,
		EmployerCost:         employerCost,
		TariffVersion:        c.tariff.Version,
	}, nil
}
