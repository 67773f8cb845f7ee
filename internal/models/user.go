package models

import (
	"time"
)

// Roles recognized by route authorization.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleEngineer   = "engineer"
	RoleFinance    = "finance"
)

// User is a local mirror of an Authorizer identity, kept so domain records
// can reference creators, reviewers, and assignees by foreign key. It is
// upserted on first authenticated request; Authorizer remains the source of
// truth for credentials and sessions.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthID    string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:'engineer'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
