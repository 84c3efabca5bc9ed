package controllers

import (
	"time"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
)

// CreateCouponRequest represents the request body for creating a new coupon
type CreateCouponRequest struct {
	Code             string     `json:"code" binding:"required"`
	Description      string     `json:"description"`
	DiscountType     string     `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue    float64    `json:"discount_value" binding:"required,gt=0"`
	MaxDiscount      float64    `json:"max_discount"`
	MinPurchaseValue float64    `json:"min_purchase_value"`
	TotalUseLimit    int        `json:"total_use_limit"`
	PerUserLimit     int        `json:"per_user_limit"`
	BonusMinutes     int        `json:"bonus_minutes"`
	NewUsersOnly     bool       `json:"new_users_only"`
	StartsAt         *time.Time `json:"starts_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	Origin           string     `json:"origin"`
	Influencer       string     `json:"influencer"`
}

// CreateCoupon creates a new coupon
func CreateCoupon(c *gin.Context) {
	utils.LogInfo("CreateCoupon called")

	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid coupon request format: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if err := utils.ValidateCouponValue(req.DiscountType, req.DiscountValue); err != nil {
		utils.LogError("Invalid coupon value for code %s: %v", req.Code, err)
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	code := utils.NormalizeCouponCode(req.Code)
	if code == "" {
		utils.LogError("Coupon code is empty after normalization")
		utils.BadRequest(c, "Coupon code is required", nil)
		return
	}
	utils.LogInfo("Processing coupon creation with code: %s", code)

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		utils.LogError("Invalid expiry date for coupon code %s: date is in the past", code)
		utils.BadRequest(c, "Expiry date must be in the future", nil)
		return
	}

	startsAt := time.Now()
	if req.StartsAt != nil {
		startsAt = *req.StartsAt
	}
	perUserLimit := req.PerUserLimit
	if perUserLimit <= 0 {
		perUserLimit = 1
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	// Case-insensitive uniqueness; the LOWER(code) index backs this up.
	var existing models.Coupon
	if err := tx.Where("LOWER(code) = LOWER(?)", code).First(&existing).Error; err == nil {
		tx.Rollback()
		utils.LogError("Coupon code already exists: %s", code)
		utils.Conflict(c, "Coupon code already exists", nil)
		return
	}

	coupon := models.Coupon{
		Code:             code,
		Description:      req.Description,
		DiscountType:     req.DiscountType,
		DiscountValue:    req.DiscountValue,
		MaxDiscount:      req.MaxDiscount,
		MinPurchaseValue: req.MinPurchaseValue,
		TotalUseLimit:    req.TotalUseLimit,
		PerUserLimit:     perUserLimit,
		BonusMinutes:     req.BonusMinutes,
		NewUsersOnly:     req.NewUsersOnly,
		StartsAt:         startsAt,
		ExpiresAt:        req.ExpiresAt,
		Origin:           req.Origin,
		Influencer:       req.Influencer,
		Status:           models.CouponStatusActive,
	}

	if err := tx.Create(&coupon).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyError(err) {
			utils.LogError("Duplicate coupon code: %s", code)
			utils.Conflict(c, "Coupon code already exists", nil)
			return
		}
		utils.LogError("Failed to create coupon: %v", err)
		utils.InternalServerError(c, "Failed to create coupon", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit transaction: %v", err)
		utils.InternalServerError(c, "Failed to commit transaction", nil)
		return
	}

	utils.LogInfo("Successfully created coupon with code: %s, ID: %d", coupon.Code, coupon.ID)
	utils.Created(c, "Coupon created successfully", formatCoupon(&coupon, time.Now()))
}

// formatCoupon renders the admin view of a coupon record
func formatCoupon(coupon *models.Coupon, now time.Time) gin.H {
	var expiry interface{}
	if coupon.ExpiresAt != nil {
		expiry = coupon.ExpiresAt.Format("2006-01-02")
	}
	return gin.H{
		"id":                     coupon.ID,
		"code":                   coupon.Code,
		"description":            coupon.Description,
		"discount_type":          coupon.DiscountType,
		"discount_value":         coupon.DiscountValue,
		"max_discount":           coupon.MaxDiscount,
		"min_purchase_value":     coupon.MinPurchaseValue,
		"total_use_limit":        coupon.TotalUseLimit,
		"per_user_limit":         coupon.PerUserLimit,
		"bonus_minutes":          coupon.BonusMinutes,
		"new_users_only":         coupon.NewUsersOnly,
		"starts_at":              coupon.StartsAt.Format("2006-01-02 15:04:05"),
		"expires_at":             expiry,
		"origin":                 coupon.Origin,
		"influencer":             coupon.Influencer,
		"status":                 coupon.Status,
		"is_expired":             utils.IsCouponExpired(coupon, now),
		"total_uses":             coupon.TotalUses,
		"total_discount_granted": coupon.TotalDiscountGranted,
		"total_bonus_minutes":    coupon.TotalBonusMinutes,
		"created_at":             coupon.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
