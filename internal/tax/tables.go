package tax

import "github.com/shopspring/decimal"

// StampDutyRate is the flat levy applied to gross payroll amounts,
// independent of the bracket schedule.
var StampDutyRate = decimal.NewFromFloat(0.00759)

func d(v int64) decimal.Decimal      { return decimal.NewFromInt(v) }
func dp(v int64) *decimal.Decimal    { p := d(v); return &p }
func rate(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Turkey2025 is the 2025 Turkish income-tax schedule. The first slice is the
// tax-free allowance; cumulative bases carry the tax accrued below each Min.
func Turkey2025() BracketTable {
	table, err := NewBracketTable("2025-Turkey-v1", []Bracket{
		{Min: d(0), Max: dp(11_000), Rate: rate(0), CumulativeBase: d(0)},
		{Min: d(11_000), Max: dp(30_000), Rate: rate(0.15), CumulativeBase: d(0)},
		{Min: d(30_000), Max: dp(80_000), Rate: rate(0.20), CumulativeBase: d(2_850)},
		{Min: d(80_000), Max: dp(200_000), Rate: rate(0.27), CumulativeBase: d(12_850)},
		{Min: d(200_000), Max: dp(400_000), Rate: rate(0.35), CumulativeBase: d(45_250)},
		{Min: d(400_000), Max: nil, Rate: rate(0.40), CumulativeBase: d(115_250)},
	})
	if err != nil {
		panic(err)
	}
	return table
}
