package tax

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"go-unihr/internal/shared/apperror"
)

// Bracket is one slice of a progressive schedule. Min is inclusive, Max is
// exclusive; the last bracket leaves Max nil and is unbounded above.
// CumulativeBase is the tax already accrued by all lower brackets at Min.
type Bracket struct {
	Min            decimal.Decimal
	Max            *decimal.Decimal
	Rate           decimal.Decimal
	CumulativeBase decimal.Decimal
}

// BracketTable is an ordered, immutable progressive schedule for one fiscal
// year, identified by a version tag such as "2025-Turkey-v1".
type BracketTable struct {
	version  string
	brackets []Bracket
}

func NewBracketTable(version string, brackets []Bracket) (BracketTable, error) {
	if version == "" {
		return BracketTable{}, apperror.New(apperror.CodeInvalidInput, "bracket table version is required", http.StatusBadRequest)
	}
	if len(brackets) == 0 {
		return BracketTable{}, apperror.New(apperror.CodeInvalidInput, "bracket table must contain at least one bracket", http.StatusBadRequest)
	}

	prev := decimal.Zero
	cumulative := decimal.Zero
	for i, b := range brackets {
		if !b.Min.Equal(prev) {
			return BracketTable{}, invalidTable(version, fmt.Sprintf("bracket %d must start at %s", i, prev))
		}
		if b.Rate.IsNegative() {
			return BracketTable{}, invalidTable(version, fmt.Sprintf("bracket %d has a negative rate", i))
		}
		if !b.CumulativeBase.Equal(cumulative) {
			return BracketTable{}, invalidTable(version, fmt.Sprintf("bracket %d cumulative base mismatch, expected %s", i, cumulative))
		}
		if b.Max == nil {
			if i != len(brackets)-1 {
				return BracketTable{}, invalidTable(version, fmt.Sprintf("bracket %d is unbounded but not last", i))
			}
			break
		}
		if !b.Max.GreaterThan(b.Min) {
			return BracketTable{}, invalidTable(version, fmt.Sprintf("bracket %d has max <= min", i))
		}
		cumulative = cumulative.Add(b.Max.Sub(b.Min).Mul(b.Rate))
		prev = *b.Max
	}
	if last := brackets[len(brackets)-1]; last.Max != nil {
		return BracketTable{}, invalidTable(version, "last bracket must be unbounded")
	}

	cp := make([]Bracket, len(brackets))
	copy(cp, brackets)
	return BracketTable{version: version, brackets: cp}, nil
}

func invalidTable(version, detail string) error {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("invalid bracket table %s: %s", version, detail),
		http.StatusBadRequest,
	)
}

func (t BracketTable) Version() string { return t.version }

// bracketFor returns the bracket whose [Min, Max) range contains the amount.
// Amounts below zero are the caller's problem; tables start at zero.
func (t BracketTable) bracketFor(amount decimal.Decimal) Bracket {
	for _, b := range t.brackets {
		if b.Max == nil || amount.LessThan(*b.Max) {
			return b
		}
	}
	return t.brackets[len(t.brackets)-1]
}
