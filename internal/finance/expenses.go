package finance

import (
	"strings"

	"github.com/samber/lo"
)

// MaxExpenseRows is the most expense rows a deal may carry.
const MaxExpenseRows = 1000

// UnnamedExpense labels an expense row that carries an amount but no name.
const UnnamedExpense = "(未設定)"

// RawExpense is an expense row as entered in the form.
type RawExpense struct {
	Name  string
	Price any
}

// Expense is a cleaned expense row.
type Expense struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// NormalizeExpenses drops rows with neither a name nor a parsable price, fills in defaults for
// the remaining rows and returns them in input order together with the sum of their prices.
// Callers keep raw at or below MaxExpenseRows.
func NormalizeExpenses(raw []RawExpense) ([]Expense, int64) {
	cleaned := make([]Expense, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		price := ParseAmount(r.Price)
		if name == "" && price.IsAbsent() {
			continue
		}
		cleaned = append(cleaned, Expense{
			Name:  lo.Ternary(name == "", UnnamedExpense, name),
			Price: price.OrElse(0),
		})
	}
	total := lo.SumBy(cleaned, func(e Expense) int64 { return e.Price })
	return cleaned, total
}
