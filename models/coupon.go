package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType constants
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// CouponStatus constants
const (
	CouponStatusActive   = "active"
	CouponStatusInactive = "inactive"
	CouponStatusExpired  = "expired"
)

// Coupon is a promotional code applied to a minute-package purchase.
// Coupons are never hard-deleted once used; retiring one sets its status to
// expired so redemption history keeps a valid reference.
type Coupon struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Code             string     `gorm:"uniqueIndex:idx_coupons_code_lower" json:"code"`
	Description      string     `json:"description"`
	DiscountType     string     `json:"discount_type"` // "percentage" or "fixed"
	DiscountValue    float64    `json:"discount_value"`
	MaxDiscount      float64    `json:"max_discount"`       // 0 = uncapped
	MinPurchaseValue float64    `json:"min_purchase_value"` // minimum eligible purchase amount
	TotalUseLimit    int        `json:"total_use_limit"`    // 0 = unlimited
	PerUserLimit     int        `json:"per_user_limit"`
	BonusMinutes     int        `json:"bonus_minutes"`
	NewUsersOnly     bool       `json:"new_users_only"`
	StartsAt         time.Time  `json:"starts_at"`
	ExpiresAt        *time.Time `json:"expires_at"` // nil = never expires
	Origin           string     `json:"origin"`
	Influencer       string     `json:"influencer"`
	Status           string     `json:"status" gorm:"default:'active'"`

	// Running counters, mutated only inside the redemption transaction.
	TotalUses            int     `json:"total_uses"`
	TotalDiscountGranted float64 `json:"total_discount_granted"`
	TotalBonusMinutes    int     `json:"total_bonus_minutes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CouponUsage records one successful redemption. Coupon code and user email
// are denormalized so reporting survives later coupon or user changes.
type CouponUsage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CouponID       uint      `json:"coupon_id"`
	Coupon         Coupon    `json:"-" gorm:"foreignKey:CouponID"`
	UserID         uint      `json:"user_id"`
	CouponCode     string    `json:"coupon_code"`
	UserEmail      string    `json:"user_email"`
	DiscountAmount float64   `json:"discount_amount"`
	BonusMinutes   int       `json:"bonus_minutes"`
	CreatedAt      time.Time `json:"created_at"`
}
