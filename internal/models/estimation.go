package models

import (
	"time"
)

// Estimation is the internal cost projection for a project, one per project.
// Once approved it is immutable; editing a checked estimation reverts the
// checked flag.
type Estimation struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	EstimationNumber string   `gorm:"size:32;uniqueIndex;not null" json:"estimationNumber"`
	ProjectID        uint     `gorm:"uniqueIndex;not null" json:"projectId"`
	Project          *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	Materials []EstimationMaterial `gorm:"foreignKey:EstimationID;constraint:OnDelete:CASCADE" json:"materials"`
	Labour    []EstimationLabour   `gorm:"foreignKey:EstimationID;constraint:OnDelete:CASCADE" json:"labour"`
	Terms     []EstimationTerm     `gorm:"foreignKey:EstimationID;constraint:OnDelete:CASCADE" json:"terms"`

	// Derived amounts, recomputed immediately before every persist.
	EstimatedAmount  float64 `gorm:"not null;default:0" json:"estimatedAmount"`
	QuotationAmount  float64 `gorm:"not null;default:0" json:"quotationAmount"`
	CommissionAmount float64 `gorm:"not null;default:0" json:"commissionAmount"`
	Profit           float64 `gorm:"not null;default:0" json:"profit"`

	IsChecked    bool  `gorm:"not null;default:false" json:"isChecked"`
	IsApproved   bool  `gorm:"not null;default:false" json:"isApproved"`
	CheckedByID  *uint `json:"checkedById,omitempty"`
	CheckedBy    *User `gorm:"foreignKey:CheckedByID" json:"checkedBy,omitempty"`
	ApprovedByID *uint `json:"approvedById,omitempty"`
	ApprovedBy   *User `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`

	CreatedByID *uint     `json:"createdById,omitempty"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EstimationMaterial is a material line item: quantity x unit price.
type EstimationMaterial struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	EstimationID uint    `gorm:"not null;index" json:"-"`
	Description  string  `gorm:"size:512;not null" json:"description"`
	Quantity     float64 `gorm:"not null;default:0" json:"quantity"`
	UnitPrice    float64 `gorm:"not null;default:0" json:"unitPrice"`
	Total        float64 `gorm:"not null;default:0" json:"total"`
}

// EstimationLabour is a labour line item: days x day rate.
type EstimationLabour struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	EstimationID uint    `gorm:"not null;index" json:"-"`
	Designation  string  `gorm:"size:255;not null" json:"designation"`
	Days         float64 `gorm:"not null;default:0" json:"days"`
	Price        float64 `gorm:"not null;default:0" json:"price"`
	Total        float64 `gorm:"not null;default:0" json:"total"`
}

// EstimationTerm is a terms/miscellaneous line item: quantity x unit price.
type EstimationTerm struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	EstimationID uint    `gorm:"not null;index" json:"-"`
	Description  string  `gorm:"size:512;not null" json:"description"`
	Quantity     float64 `gorm:"not null;default:0" json:"quantity"`
	UnitPrice    float64 `gorm:"not null;default:0" json:"unitPrice"`
	Total        float64 `gorm:"not null;default:0" json:"total"`
}

// TableName overrides the table name for Estimation
func (Estimation) TableName() string {
	return "estimations"
}

// TableName overrides the table name for EstimationMaterial
func (EstimationMaterial) TableName() string {
	return "estimation_materials"
}

// TableName overrides the table name for EstimationLabour
func (EstimationLabour) TableName() string {
	return "estimation_labour"
}

// TableName overrides the table name for EstimationTerm
func (EstimationTerm) TableName() string {
	return "estimation_terms"
}
