package finance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeExpenses_DropsEmptyRows(t *testing.T) {
	cleaned, total := NormalizeExpenses([]RawExpense{
		{Name: "", Price: nil},
		{Name: "Tax", Price: "500"},
	})
	require.Equal(t, []Expense{{Name: "Tax", Price: 500}}, cleaned)
	require.Equal(t, int64(500), total)
}

func TestNormalizeExpenses_Defaults(t *testing.T) {
	cleaned, total := NormalizeExpenses([]RawExpense{
		{Name: "  ", Price: "1,000"},
		{Name: " Survey ", Price: nil},
		{Name: "Stamp", Price: "n/a"},
		{Name: "", Price: "oops"},
	})
	require.Equal(t, []Expense{
		{Name: UnnamedExpense, Price: 1000},
		{Name: "Survey", Price: 0},
		{Name: "Stamp", Price: 0},
	}, cleaned)
	require.Equal(t, int64(1000), total)
}

func TestNormalizeExpenses_KeepsOrder(t *testing.T) {
	cleaned, total := NormalizeExpenses([]RawExpense{
		{Name: "c", Price: 3},
		{Name: "a", Price: 1},
		{Name: "b", Price: 2.9},
	})
	require.Equal(t, []string{"c", "a", "b"}, []string{cleaned[0].Name, cleaned[1].Name, cleaned[2].Name})
	require.Equal(t, int64(6), total)
}

func TestNormalizeExpenses_Empty(t *testing.T) {
	for _, raw := range [][]RawExpense{nil, {}, {{Name: "", Price: ""}}} {
		cleaned, total := NormalizeExpenses(raw)
		require.Empty(t, cleaned)
		require.NotNil(t, cleaned)
		require.Zero(t, total)
	}
}
