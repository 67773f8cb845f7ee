package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quotation is the client-facing priced proposal for a project, one per
// project. Creating one moves the project to quotation_sent; deleting one
// reverts the project to estimation_prepared.
type Quotation struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	QuotationNumber string   `gorm:"size:32;uniqueIndex;not null" json:"quotationNumber"`
	ProjectID       uint     `gorm:"uniqueIndex;not null" json:"projectId"`
	Project         *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	// Soft link to the estimation the quotation was derived from. Creation
	// looks one up but does not require it to exist.
	EstimationID *uint       `json:"estimationId,omitempty"`
	Estimation   *Estimation `gorm:"foreignKey:EstimationID" json:"estimation,omitempty"`

	ScopeOfWork string          `gorm:"type:text" json:"scopeOfWork"`
	Items       []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
	Terms       datatypes.JSON  `gorm:"type:json" json:"terms"`

	VatPercentage float64 `gorm:"not null;default:0" json:"vatPercentage"`
	SubTotal      float64 `gorm:"not null;default:0" json:"subTotal"`
	VatAmount     float64 `gorm:"not null;default:0" json:"vatAmount"`
	Total         float64 `gorm:"not null;default:0" json:"total"`

	CreatedByID *uint     `json:"createdById,omitempty"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// QuotationItem is a priced line item with an optional uploaded image.
type QuotationItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	QuotationID uint    `gorm:"not null;index" json:"-"`
	Description string  `gorm:"size:512;not null" json:"description"`
	Quantity    float64 `gorm:"not null;default:0" json:"quantity"`
	UnitPrice   float64 `gorm:"not null;default:0" json:"unitPrice"`
	Total       float64 `gorm:"not null;default:0" json:"total"`
	ImageURL    string  `gorm:"size:1024" json:"imageUrl,omitempty"`
	ImageKey    string  `gorm:"size:512" json:"-"`
}

// TableName overrides the table name for Quotation
func (Quotation) TableName() string {
	return "quotations"
}

// TableName overrides the table name for QuotationItem
func (QuotationItem) TableName() string {
	return "quotation_items"
}
