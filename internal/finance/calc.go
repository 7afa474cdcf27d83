// Package finance turns the figures entered for a deal into the stored derived figures:
// acquisition cost, project total and yields in basis points.
//
// Every function here is pure. Missing inputs produce missing outputs; nothing returns an error.
package finance

import (
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// bpPerYear scales a monthly rent ratio to annual basis points (12 months * 10000 bp).
var bpPerYear = decimal.NewFromInt(12 * 10000)

// AcquisitionCost is the total returned by NormalizeExpenses, or None when there are no
// expense rows.
func AcquisitionCost(cleaned []Expense, total int64) mo.Option[int64] {
	if len(cleaned) == 0 {
		return mo.None[int64]()
	}
	return mo.Some(total)
}

// ProjectTotal is the property price plus the acquisition cost (0 when absent).
// It is None when the price is absent.
func ProjectTotal(price, acquisition mo.Option[int64]) mo.Option[int64] {
	p, ok := price.Get()
	if !ok {
		return mo.None[int64]()
	}
	return mo.Some(p + acquisition.OrElse(0))
}

// YieldBp is the annualized monthly rent over the project total in basis points:
// round(rent * 12 / total * 10000). Ties round half away from zero, so 2.5 bp is 3 bp and
// -2.5 bp is -3 bp. The division is exact; no float is involved.
//
// It is None when either input is absent or the total is not positive.
func YieldBp(monthlyRent, total mo.Option[int64]) mo.Option[int64] {
	rent, ok := monthlyRent.Get()
	if !ok {
		return mo.None[int64]()
	}
	t, ok := total.Get()
	if !ok || t <= 0 {
		return mo.None[int64]()
	}
	bp := decimal.NewFromInt(rent).Mul(bpPerYear).DivRound(decimal.NewFromInt(t), 0)
	return mo.Some(bp.IntPart())
}

// Inputs are the normalized figures of one deal.
type Inputs struct {
	PropertyPrice     mo.Option[int64]
	ExpectedRent      mo.Option[int64]
	AgentRent         mo.Option[int64]
	ExpectedSalePrice mo.Option[int64]
	Expenses          []Expense
	// ExpenseTotal is the total NormalizeExpenses returned for Expenses.
	ExpenseTotal int64
}

// Figures are the derived figures stored alongside a deal.
type Figures struct {
	AcquisitionCost mo.Option[int64]
	ProjectTotal    mo.Option[int64]
	ExpectedYieldBp mo.Option[int64]
	SurfaceYieldBp  mo.Option[int64]
	ExpectedProfit  mo.Option[int64]
}

// Derive computes all figures from in. Calling it again with the same inputs returns the same
// figures; nothing is carried over from a previous computation.
func Derive(in Inputs) Figures {
	acquisition := AcquisitionCost(in.Expenses, in.ExpenseTotal)
	total := ProjectTotal(in.PropertyPrice, acquisition)

	profit := mo.None[int64]()
	if sale, ok := in.ExpectedSalePrice.Get(); ok {
		if t, ok := total.Get(); ok {
			profit = mo.Some(sale - t)
		}
	}

	return Figures{
		AcquisitionCost: acquisition,
		ProjectTotal:    total,
		ExpectedYieldBp: YieldBp(in.ExpectedRent, total),
		SurfaceYieldBp:  YieldBp(in.AgentRent, total),
		ExpectedProfit:  profit,
	}
}
