package models

import "time"

type DealVariant string

const (
	VariantIncome    DealVariant = "income"
	VariantBrokerage DealVariant = "brokerage"
	VariantResale    DealVariant = "resale"
)

type DealStatus string

// StatusProspect is the "under consideration" tag every deal starts with.
const StatusProspect DealStatus = "prospect"

// Deal - income property, brokerage deal or resale deal.
// Money columns are whole yen; nil means the figure was not supplied.
type Deal struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Variant         DealVariant `gorm:"size:20;index;not null" json:"variant"`
	Code            string      `gorm:"size:50;not null" json:"code"`
	PropertyAddress string      `gorm:"size:255;not null" json:"property_address"`

	PropertyPrice     *int64 `json:"property_price"`
	ExpectedRent      *int64 `json:"expected_rent"`
	AgentRent         *int64 `json:"agent_rent"`
	ExpectedSalePrice *int64 `json:"expected_sale_price"`

	// Derived, recomputed on every write.
	AcquisitionCost *int64 `json:"acquisition_cost"`
	ProjectTotal    *int64 `json:"project_total"`
	ExpectedYieldBp *int64 `json:"expected_yield_bp"`
	SurfaceYieldBp  *int64 `json:"surface_yield_bp"`
	ExpectedProfit  *int64 `json:"expected_profit"`

	Status    DealStatus `gorm:"size:20;not null;default:prospect" json:"status"`
	FolderID  string     `gorm:"size:255" json:"folder_id"`
	Note      string     `gorm:"size:2000" json:"note"`
	CreatedBy *uint      `json:"created_by"`

	Expenses []DealExpense `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE" json:"expenses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DealExpense - one itemized acquisition expense, owned by exactly one deal.
type DealExpense struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	DealID   uint   `gorm:"index;not null" json:"deal_id"`
	Position int    `gorm:"not null" json:"position"`
	Name     string `gorm:"size:200;not null" json:"name"`
	Price    int64  `gorm:"not null" json:"price"`
}
