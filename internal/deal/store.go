package deal

import (
	"context"
	"errors"
	"strings"

	"propdesk-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Filter struct {
	Variant models.DealVariant
	Status  models.DealStatus
	// Query matches code or address (substring).
	Query string
	Limit int
}

type Order struct {
	Column string
	Desc   bool
}

// NewestFirst is the default list order.
var NewestFirst = Order{Column: "created_at", Desc: true}

var sortableColumns = map[string]bool{
	"created_at":        true,
	"updated_at":        true,
	"code":              true,
	"property_price":    true,
	"project_total":     true,
	"expected_yield_bp": true,
	"surface_yield_bp":  true,
}

// Store persists deals together with their expense rows. The parent and its children are
// always written in one transaction.
type Store interface {
	FindAll(ctx context.Context, filter Filter, order Order) ([]models.Deal, error)
	// FindOne returns ErrNotFound when id does not exist.
	FindOne(ctx context.Context, id uint) (*models.Deal, error)
	CreateWithChildren(ctx context.Context, d *models.Deal, expenses []models.DealExpense) (*models.Deal, error)
	ReplaceChildrenAndUpdate(ctx context.Context, id uint, d *models.Deal, expenses []models.DealExpense) (*models.Deal, error)
	Delete(ctx context.Context, id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func withExpenses(db *gorm.DB) *gorm.DB {
	return db.Preload("Expenses", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	})
}

func (s *GormStore) FindAll(ctx context.Context, filter Filter, order Order) ([]models.Deal, error) {
	q := withExpenses(s.db.WithContext(ctx).Model(&models.Deal{}))
	if filter.Variant != "" {
		q = q.Where("variant = ?", filter.Variant)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		like := "%" + query + "%"
		q = q.Where("code LIKE ? OR property_address LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if !sortableColumns[order.Column] {
		order = NewestFirst
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: order.Desc})

	var deals []models.Deal
	if err := q.Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

func (s *GormStore) FindOne(ctx context.Context, id uint) (*models.Deal, error) {
	var d models.Deal
	if err := withExpenses(s.db.WithContext(ctx)).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) CreateWithChildren(ctx context.Context, d *models.Deal, expenses []models.DealExpense) (*models.Deal, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(d).Error; err != nil {
			return err
		}
		return insertExpenses(tx, d.ID, expenses)
	})
	if err != nil {
		return nil, err
	}
	return s.FindOne(ctx, d.ID)
}

func (s *GormStore) ReplaceChildrenAndUpdate(ctx context.Context, id uint, d *models.Deal, expenses []models.DealExpense) (*models.Deal, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Deal
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("deal_id = ?", id).Delete(&models.DealExpense{}).Error; err != nil {
			return err
		}
		d.ID = id
		if err := tx.Omit(clause.Associations).Save(d).Error; err != nil {
			return err
		}
		return insertExpenses(tx, id, expenses)
	})
	if err != nil {
		return nil, err
	}
	return s.FindOne(ctx, id)
}

func (s *GormStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deal_id = ?", id).Delete(&models.DealExpense{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Deal{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func insertExpenses(tx *gorm.DB, dealID uint, expenses []models.DealExpense) error {
	if len(expenses) == 0 {
		return nil
	}
	for i := range expenses {
		expenses[i].ID = 0
		expenses[i].DealID = dealID
	}
	return tx.Create(&expenses).Error
}
