package models

import (
	"time"

	"github.com/nimbusworks/opsdesk/internal/status"
)

// Project is the aggregate root of the contracting workflow. Status may only
// move along the edges of the transition table in internal/status, except
// for the documented progress-driven advances and the quotation
// approval/rejection direct writes.
type Project struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	ProjectNumber string               `gorm:"size:32;uniqueIndex;not null" json:"projectNumber"`
	ProjectName   string               `gorm:"size:255;not null" json:"projectName"`
	Description   string               `gorm:"type:text" json:"description"`
	ClientID      uint                 `gorm:"not null;index" json:"clientId"`
	Client        *Client              `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	SiteAddress   string               `gorm:"size:512" json:"siteAddress"`
	SiteLocation  string               `gorm:"size:255" json:"siteLocation"`
	Status        status.ProjectStatus `gorm:"size:32;not null;default:'draft';index" json:"status"`
	Progress      int                  `gorm:"not null;default:0" json:"progress"`
	CreatedByID   *uint                `json:"createdById,omitempty"`
	CreatedBy     *User                `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	UpdatedByID   *uint                `json:"updatedById,omitempty"`
	UpdatedBy     *User                `gorm:"foreignKey:UpdatedByID" json:"updatedBy,omitempty"`
	AssignedToID  *uint                `json:"assignedToId,omitempty"`
	AssignedTo    *User                `gorm:"foreignKey:AssignedToID" json:"assignedTo,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}
