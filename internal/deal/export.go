package deal

import (
	"fmt"
	"io"

	"propdesk-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	dealsSheet    = "Deals"
	expensesSheet = "Expenses"
)

type column struct {
	header string
	value  func(d *models.Deal) any
}

func amount(p *int64) any {
	if p == nil {
		return ""
	}
	return *p
}

// percent turns basis points into a percentage with two decimals.
func percent(p *int64) any {
	if p == nil {
		return ""
	}
	return float64(*p) / 100
}

func exportColumns(desc Descriptor) []column {
	cols := []column{
		{"ID", func(d *models.Deal) any { return d.ID }},
		{"Code", func(d *models.Deal) any { return d.Code }},
		{"Address", func(d *models.Deal) any { return d.PropertyAddress }},
		{"Status", func(d *models.Deal) any { return string(d.Status) }},
		{"Property price", func(d *models.Deal) any { return amount(d.PropertyPrice) }},
	}
	if desc.ExpectedRent {
		cols = append(cols, column{"Expected rent", func(d *models.Deal) any { return amount(d.ExpectedRent) }})
	}
	if desc.AgentRent {
		cols = append(cols, column{"Agent rent", func(d *models.Deal) any { return amount(d.AgentRent) }})
	}
	if desc.ExpectedSalePrice {
		cols = append(cols, column{"Expected sale price", func(d *models.Deal) any { return amount(d.ExpectedSalePrice) }})
	}
	cols = append(cols,
		column{"Acquisition cost", func(d *models.Deal) any { return amount(d.AcquisitionCost) }},
		column{"Project total", func(d *models.Deal) any { return amount(d.ProjectTotal) }},
	)
	if desc.ExpectedRent {
		cols = append(cols, column{"Expected yield %", func(d *models.Deal) any { return percent(d.ExpectedYieldBp) }})
	}
	if desc.AgentRent {
		cols = append(cols, column{"Surface yield %", func(d *models.Deal) any { return percent(d.SurfaceYieldBp) }})
	}
	if desc.ExpectedSalePrice {
		cols = append(cols, column{"Expected profit", func(d *models.Deal) any { return amount(d.ExpectedProfit) }})
	}
	return append(cols,
		column{"Note", func(d *models.Deal) any { return d.Note }},
		column{"Created at", func(d *models.Deal) any { return d.CreatedAt.Format("2006-01-02 15:04") }},
	)
}

// WriteWorkbook writes deals as an xlsx workbook with one row per deal on the first sheet
// and one row per expense on the second.
func WriteWorkbook(w io.Writer, desc Descriptor, deals []models.Deal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dealsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(expensesSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	cols := exportColumns(desc)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := f.SetSheetRow(dealsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetSheetRow(expensesSheet, "A1", &[]any{"Deal ID", "Code", "#", "Name", "Price"}); err != nil {
		return err
	}

	expenseRow := 2
	for i := range deals {
		d := &deals[i]
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = c.value(d)
		}
		if err := f.SetSheetRow(dealsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
		for _, e := range d.Expenses {
			cells := []any{d.ID, d.Code, e.Position + 1, e.Name, e.Price}
			if err := f.SetSheetRow(expensesSheet, fmt.Sprintf("A%d", expenseRow), &cells); err != nil {
				return err
			}
			expenseRow++
		}
	}

	_, err := f.WriteTo(w)
	return err
}
