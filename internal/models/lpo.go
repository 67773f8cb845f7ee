package models

import (
	"time"
)

// LPO is a client-issued Local Purchase Order authorizing work on a project.
// Invoice generation requires one to exist. The number is issued by the
// client, not by the document number generator.
type LPO struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;index" json:"projectId"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	LpoNumber   string    `gorm:"size:64;not null" json:"lpoNumber"`
	Amount      float64   `gorm:"not null;default:0" json:"amount"`
	DocumentURL string    `gorm:"size:1024" json:"documentUrl"`
	DocumentKey string    `gorm:"size:512" json:"-"`
	CreatedByID *uint     `json:"createdById,omitempty"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for LPO
func (LPO) TableName() string {
	return "lpos"
}
