package models

import (
	"time"
)

// Client is a customer record. TRN (tax registration number) is globally
// unique across all clients.
type Client struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClientName  string    `gorm:"size:255;not null" json:"clientName"`
	Address     string    `gorm:"size:512" json:"address"`
	PostalCode  string    `gorm:"size:6" json:"postalCode"`
	Mobile      string    `gorm:"size:32" json:"mobile"`
	Telephone   string    `gorm:"size:32" json:"telephone"`
	TRN         string    `gorm:"column:trn;size:32;uniqueIndex;not null" json:"trn"`
	Email       string    `gorm:"size:255" json:"email"`
	CreatedByID *uint     `json:"createdById,omitempty"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Client
func (Client) TableName() string {
	return "clients"
}
