package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus enum constants
type RequestStatus string

const (
	StatusPendingTaluka   RequestStatus = "Pending Taluka Approval"
	StatusPendingDistrict RequestStatus = "Pending District Approval"
	StatusPendingState    RequestStatus = "Pending State Approval"
	StatusApproved        RequestStatus = "Approved"
	StatusRejected        RequestStatus = "Rejected"
)

// Terminal reports whether no further decision can be applied.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Category enum constants, in reporting order
type Category string

const (
	CategoryMedicines      Category = "Medicines"
	CategoryEquipment      Category = "Equipment"
	CategoryConsumables    Category = "Consumables"
	CategoryDiagnostics    Category = "Diagnostics"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryOther          Category = "Other"
)

var Categories = []Category{
	CategoryMedicines,
	CategoryEquipment,
	CategoryConsumables,
	CategoryDiagnostics,
	CategoryInfrastructure,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority enum constants
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ProcurementRequest is a single line-item request raised by a facility.
// Requests are never deleted; only Status changes and AuditLog grows.
type ProcurementRequest struct {
	ID            string          `gorm:"type:varchar(32);primaryKey" json:"id"`
	Category      Category        `gorm:"type:varchar(30);not null;index" json:"category"`
	ItemName      string          `gorm:"type:varchar(255);not null" json:"item_name"`
	Quantity      int             `gorm:"type:int;not null" json:"quantity"`
	PricePerUnit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price_per_unit"`
	Priority      Priority        `gorm:"type:varchar(10);not null" json:"priority"`
	Justification string          `gorm:"type:text;not null" json:"justification"`
	SubmittedBy   string          `gorm:"type:varchar(64);not null;index" json:"submitted_by"`
	Status        RequestStatus   `gorm:"type:varchar(40);not null;index" json:"status"`
	AuditLog      []AuditEntry    `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"audit_log"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalCost is quantity × price per unit.
func (r ProcurementRequest) TotalCost() decimal.Decimal {
	return r.PricePerUnit.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
