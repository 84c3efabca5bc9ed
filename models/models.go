package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a consultation client. Accounts are created and destroyed
// by the external auth service; this backend only reads users and credits
// their minute balance.
type User struct {
	gorm.Model
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	Name             string `json:"name"`
	MinutesAvailable int    `json:"minutes_available" gorm:"default:0;check:minutes_available >= 0"`
	AccountType      string `json:"account_type" gorm:"default:'standard'"`
	IsBlocked        bool   `json:"is_blocked" gorm:"default:false"`
}

// Admin represents an administrator in the system
type Admin struct {
	gorm.Model
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	LastLogin time.Time `json:"last_login"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
}

// BlacklistedToken stores admin JWTs invalidated by logout until they expire
type BlacklistedToken struct {
	gorm.Model
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
