package deal

import (
	"context"
	"testing"

	"propdesk-backend/internal/database"
	"propdesk-backend/internal/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGormStore(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return NewGormStore(db), db
}

func expenseRows(prices ...int64) []models.DealExpense {
	rows := make([]models.DealExpense, len(prices))
	for i, p := range prices {
		rows[i] = models.DealExpense{Position: i, Name: string(rune('a' + i)), Price: p}
	}
	return rows
}

func TestGormStore_CreateAndFind(t *testing.T) {
	s, _ := newGormStore(t)
	ctx := context.Background()

	d := &models.Deal{Variant: models.VariantIncome, Code: "P-1", PropertyAddress: "Tokyo",
		Status: models.StatusProspect, PropertyPrice: lo.ToPtr[int64](100)}
	created, err := s.CreateWithChildren(ctx, d, expenseRows(3, 1, 2))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Expenses, 3)
	assert.Equal(t, []int64{3, 1, 2}, lo.Map(created.Expenses, func(e models.DealExpense, _ int) int64 { return e.Price }))
	assert.Equal(t, int64(100), *created.PropertyPrice)
	assert.Nil(t, created.AcquisitionCost)

	_, err = s.FindOne(ctx, created.ID+100)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_ReplaceChildren(t *testing.T) {
	s, db := newGormStore(t)
	ctx := context.Background()

	created, err := s.CreateWithChildren(ctx, &models.Deal{Variant: models.VariantIncome, Code: "P", PropertyAddress: "A",
		Status: models.StatusProspect, AcquisitionCost: lo.ToPtr[int64](6)}, expenseRows(1, 2, 3))
	require.NoError(t, err)

	created.AcquisitionCost = nil
	created.Expenses = nil
	updated, err := s.ReplaceChildrenAndUpdate(ctx, created.ID, created, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Expenses)
	assert.Nil(t, updated.AcquisitionCost)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	var count int64
	require.NoError(t, db.Model(&models.DealExpense{}).Where("deal_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)

	updated, err = s.ReplaceChildrenAndUpdate(ctx, created.ID, updated, expenseRows(10, 20))
	require.NoError(t, err)
	assert.Len(t, updated.Expenses, 2)

	_, err = s.ReplaceChildrenAndUpdate(ctx, 999, &models.Deal{Variant: models.VariantIncome}, expenseRows(1))
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, db.Model(&models.DealExpense{}).Where("deal_id = ?", 999).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormStore_FailedInsertRollsBack(t *testing.T) {
	s, db := newGormStore(t)
	ctx := context.Background()

	created, err := s.CreateWithChildren(ctx, &models.Deal{Variant: models.VariantIncome, Code: "P", PropertyAddress: "A",
		Status: models.StatusProspect}, expenseRows(1, 2))
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&models.DealExpense{}))
	created.Code = "changed"
	_, err = s.ReplaceChildrenAndUpdate(ctx, created.ID, created, expenseRows(5))
	require.Error(t, err)

	var stored models.Deal
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, "P", stored.Code)
}

func TestGormStore_Delete(t *testing.T) {
	s, db := newGormStore(t)
	ctx := context.Background()

	created, err := s.CreateWithChildren(ctx, &models.Deal{Variant: models.VariantResale, Code: "R", PropertyAddress: "A",
		Status: models.StatusProspect}, expenseRows(1))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	require.ErrorIs(t, s.Delete(ctx, created.ID), ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.DealExpense{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormStore_FindAll(t *testing.T) {
	s, _ := newGormStore(t)
	ctx := context.Background()

	for _, d := range []models.Deal{
		{Variant: models.VariantIncome, Code: "P-1", PropertyAddress: "Tokyo Minato", ProjectTotal: lo.ToPtr[int64](300)},
		{Variant: models.VariantIncome, Code: "P-2", PropertyAddress: "Osaka", ProjectTotal: lo.ToPtr[int64](100)},
		{Variant: models.VariantIncome, Code: "P-3", PropertyAddress: "Tokyo Shibuya", ProjectTotal: lo.ToPtr[int64](200)},
		{Variant: models.VariantResale, Code: "R-1", PropertyAddress: "Tokyo"},
	} {
		d := d
		d.Status = models.StatusProspect
		_, err := s.CreateWithChildren(ctx, &d, nil)
		require.NoError(t, err)
	}

	codes := func(deals []models.Deal) []string {
		return lo.Map(deals, func(d models.Deal, _ int) string { return d.Code })
	}

	all, err := s.FindAll(ctx, Filter{Variant: models.VariantIncome}, NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"P-3", "P-2", "P-1"}, codes(all))

	tokyo, err := s.FindAll(ctx, Filter{Variant: models.VariantIncome, Query: "Tokyo"}, Order{Column: "project_total"})
	require.NoError(t, err)
	assert.Equal(t, []string{"P-3", "P-1"}, codes(tokyo))

	limited, err := s.FindAll(ctx, Filter{Variant: models.VariantIncome, Limit: 1}, Order{Column: "project_total", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"P-1"}, codes(limited))

	// Unknown columns fall back to newest first.
	fallback, err := s.FindAll(ctx, Filter{Variant: models.VariantIncome}, Order{Column: "id; drop table deals"})
	require.NoError(t, err)
	assert.Equal(t, []string{"P-3", "P-2", "P-1"}, codes(fallback))

	none, err := s.FindAll(ctx, Filter{Variant: models.VariantBrokerage}, NewestFirst)
	require.NoError(t, err)
	assert.Empty(t, none)
}
