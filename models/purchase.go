package models

import (
	"time"

	"gorm.io/gorm"
)

// PurchaseStatus constants
const (
	PurchaseStatusApproved = "approved"
)

// Purchase records a reconciled minute-package payment. The unique index on
// StripeSessionID is the idempotency key: the reconciler inserts first and
// credits minutes only when the insert wins, so redelivered webhooks for the
// same checkout session never credit twice.
type Purchase struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `json:"user_id"`
	User            User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Minutes         int            `json:"minutes"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	Status          string         `json:"status"`
	StripeSessionID string         `json:"stripe_session_id" gorm:"uniqueIndex;not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
