// Package dashboard renders the back-office pages and the per-variant summary figures.
package dashboard

import (
	"context"
	"fmt"

	"propdesk-backend/internal/deal"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VariantSummary struct {
	Variant models.DealVariant `json:"variant"`
	Label   string             `json:"label"`
	Deals   int64              `json:"deals"`
	// Sums skip absent figures; averages are over deals that have the figure.
	PropertyPriceTotal int64  `json:"property_price_total"`
	ProjectTotal       int64  `json:"project_total"`
	AvgExpectedYieldBp *int64 `json:"avg_expected_yield_bp"`
	AvgSurfaceYieldBp  *int64 `json:"avg_surface_yield_bp"`
	ExpectedProfit     int64  `json:"expected_profit"`
}

type summaryRow struct {
	Variant         models.DealVariant  `gorm:"column:variant"`
	Deals           int64               `gorm:"column:deals"`
	PropertyPrice   decimal.NullDecimal `gorm:"column:property_price"`
	ProjectTotal    decimal.NullDecimal `gorm:"column:project_total"`
	ExpectedYieldBp decimal.NullDecimal `gorm:"column:expected_yield_bp"`
	SurfaceYieldBp  decimal.NullDecimal `gorm:"column:surface_yield_bp"`
	ExpectedProfit  decimal.NullDecimal `gorm:"column:expected_profit"`
}

// Summarize aggregates every variant; variants without deals are reported with zeros.
func Summarize(ctx context.Context, db *gorm.DB) ([]VariantSummary, error) {
	var rows []summaryRow
	err := db.WithContext(ctx).Model(&models.Deal{}).
		Select(`variant,
			COUNT(*) AS deals,
			SUM(property_price) AS property_price,
			SUM(project_total) AS project_total,
			AVG(expected_yield_bp) AS expected_yield_bp,
			AVG(surface_yield_bp) AS surface_yield_bp,
			SUM(expected_profit) AS expected_profit`).
		Group("variant").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize deals: %w", err)
	}

	byVariant := make(map[models.DealVariant]summaryRow, len(rows))
	for _, r := range rows {
		byVariant[r.Variant] = r
	}

	out := make([]VariantSummary, 0, len(deal.Descriptors()))
	for _, desc := range deal.Descriptors() {
		r := byVariant[desc.Variant]
		out = append(out, VariantSummary{
			Variant:            desc.Variant,
			Label:              desc.Label,
			Deals:              r.Deals,
			PropertyPriceTotal: sum(r.PropertyPrice),
			ProjectTotal:       sum(r.ProjectTotal),
			AvgExpectedYieldBp: average(r.ExpectedYieldBp),
			AvgSurfaceYieldBp:  average(r.SurfaceYieldBp),
			ExpectedProfit:     sum(r.ExpectedProfit),
		})
	}
	return out, nil
}

func sum(d decimal.NullDecimal) int64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.IntPart()
}

// average rounds half away from zero like the stored yields.
func average(d decimal.NullDecimal) *int64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.Round(0).IntPart()
	return &v
}

// GET /api/dashboard/summary
func SummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := Summarize(c.UserContext(), db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Summary could not be computed")
		}
		return c.JSON(summary)
	}
}
