package models

import (
	"time"
)

// Comment action types. Comments are the append-only audit trail of a
// project; they are never mutated or deleted through the core flows.
const (
	ActionApproval       = "approval"
	ActionRejection      = "rejection"
	ActionCheck          = "check"
	ActionProgressUpdate = "progress_update"
)

// Comment is an activity-log entry tied to a project.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;index" json:"projectId"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	ActionType  string    `gorm:"size:32;not null" json:"actionType"`
	Text        string    `gorm:"size:1024" json:"text"`
	Progress    *int      `json:"progress,omitempty"`
	Meta        JSON      `gorm:"type:json" json:"meta,omitempty"`
	CreatedByID *uint     `json:"createdById,omitempty"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName overrides the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
