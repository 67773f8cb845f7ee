package models

import (
	"time"
)

// WorkCompletion is the photographic evidence package closing out on-site
// work. It is created lazily on the first image upload and looked up with a
// findOne per project, so it is effectively singular even though no unique
// index enforces that.
type WorkCompletion struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	WcrNumber   string                `gorm:"size:32;uniqueIndex;not null" json:"wcrNumber"`
	ProjectID   uint                  `gorm:"not null;index" json:"projectId"`
	Project     *Project              `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Images      []WorkCompletionImage `gorm:"foreignKey:WorkCompletionID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedByID *uint                 `json:"createdById,omitempty"`
	CreatedBy   *User                 `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// WorkCompletionImage is one titled image record, with the storage key kept
// for deletion.
type WorkCompletionImage struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	WorkCompletionID uint      `gorm:"not null;index" json:"-"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      string    `gorm:"size:512" json:"description"`
	ImageURL         string    `gorm:"size:1024" json:"imageUrl"`
	ImageKey         string    `gorm:"size:512" json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName overrides the table name for WorkCompletion
func (WorkCompletion) TableName() string {
	return "work_completions"
}

// TableName overrides the table name for WorkCompletionImage
func (WorkCompletionImage) TableName() string {
	return "work_completion_images"
}
