package models

import "gorm.io/gorm"

// User represents a customer of the platform. Guests checking out without an
// account are synthesized User rows with a placeholder email and IsGuest set.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string `json:"name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)"` // No json tag for security
	Phone      string `json:"phone" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	IsGuest    bool   `json:"is_guest"`
	gorm.Model `json:"-"`
}

// Address belongs to exactly one user. At most one address per user carries
// IsDefault; the rule is enforced at write time, not as a DB constraint.
type Address struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string `json:"user_id" gorm:"index;type:varchar(36)" validate:"required"`
	Label      string `json:"label" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	Name       string `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Phone      string `json:"phone" gorm:"type:varchar(32)" validate:"required,max=32"`
	Line1      string `json:"line1" gorm:"type:varchar(255)" validate:"required,max=255"`
	Line2      string `json:"line2" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	City       string `json:"city" gorm:"type:varchar(100)" validate:"required,max=100"`
	District   string `json:"district" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20)" validate:"omitempty,max=20"`
	Country    string `json:"country" gorm:"type:varchar(100);default:Bangladesh"`
	IsDefault  bool   `json:"is_default"`
	gorm.Model `json:"-"`
}
