package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// StringList is stored as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Admin is a back-office principal, a separate type from User. Failed logins
// increment LoginAttempts; past the limit the account locks until LockedUntil.
type Admin struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string     `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Email         string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password      string     `gorm:"type:varchar(255)"` // No json tag for security
	Role          string     `json:"role" gorm:"type:varchar(32);default:staff"`
	Permissions   StringList `json:"permissions" gorm:"type:text"`
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`
	gorm.Model    `json:"-"`
}

// AdminSession is a server-side session row backing the admin JWT cookie.
// Distinct from customer sessions, which are stateless tokens.
type AdminSession struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AdminID   string    `json:"admin_id" gorm:"index;type:varchar(36)"`
	IP        string    `json:"ip" gorm:"type:varchar(64)"`
	UserAgent string    `json:"user_agent" gorm:"type:varchar(255)"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminAuditLog is an append-only record of admin actions.
type AdminAuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AdminID   string    `json:"admin_id" gorm:"index;type:varchar(36)"`
	Action    string    `json:"action" gorm:"type:varchar(64)"`
	IP        string    `json:"ip" gorm:"type:varchar(64)"`
	UserAgent string    `json:"user_agent" gorm:"type:varchar(255)"`
	Detail    string    `json:"detail" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
