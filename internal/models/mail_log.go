package models

import (
	"time"
)

// Mail log statuses.
const (
	MailStatusSent   = "sent"
	MailStatusFailed = "failed"
)

// MailLog records every notification send attempt. Notifications are
// best-effort; a failed row here is the only trace of a lost send.
type MailLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Recipient string    `gorm:"size:255;not null" json:"recipient"`
	Subject   string    `gorm:"size:512;not null" json:"subject"`
	Template  string    `gorm:"size:64;not null" json:"template"`
	Params    JSON      `gorm:"type:json" json:"params,omitempty"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	Error     string    `gorm:"size:1024" json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name for MailLog
func (MailLog) TableName() string {
	return "mail_logs"
}
