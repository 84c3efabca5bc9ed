package controllers

import (
	"time"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
)

// GetCoupons returns coupons filtered by status, origin and free-text search
func GetCoupons(c *gin.Context) {
	utils.LogInfo("GetCoupons called")

	pagination := utils.NewPagination(c)
	status := c.DefaultQuery("status", "all")
	origin := c.DefaultQuery("origin", "all")
	search := c.Query("search")
	utils.LogDebug("Listing coupons - status: %s, origin: %s, search: %q, page: %d", status, origin, search, pagination.Page)

	now := time.Now()
	query := config.DB.Model(&models.Coupon{})

	switch status {
	case "all", "":
	case models.CouponStatusExpired:
		// Time-lapsed coupons count as expired even while their stored
		// status still reads active.
		query = query.Where("status = ? OR (status = ? AND expires_at IS NOT NULL AND expires_at < ?)",
			models.CouponStatusExpired, models.CouponStatusActive, now)
	case models.CouponStatusActive:
		query = query.Where("status = ? AND (expires_at IS NULL OR expires_at >= ?)",
			models.CouponStatusActive, now)
	default:
		query = query.Where("status = ?", status)
	}

	if origin != "all" && origin != "" {
		query = query.Where("origin = ?", origin)
	}

	if search != "" {
		like := "%" + search + "%"
		query = query.Where("code ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count coupons: %v", err)
		utils.InternalServerError(c, "Failed to count coupons", nil)
		return
	}
	pagination.SetTotal(total)

	var coupons []models.Coupon
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&coupons).Error; err != nil {
		utils.LogError("Failed to fetch coupons: %v", err)
		utils.InternalServerError(c, "Failed to fetch coupons", nil)
		return
	}
	utils.LogInfo("Retrieved %d coupons out of %d total", len(coupons), total)

	formatted := make([]gin.H, 0, len(coupons))
	for i := range coupons {
		formatted = append(formatted, formatCoupon(&coupons[i], now))
	}

	utils.Success(c, "Coupons retrieved successfully", gin.H{
		"coupons":    formatted,
		"pagination": pagination.Meta(),
	})
}

// UpdateCouponRequest represents the mutable coupon fields
type UpdateCouponRequest struct {
	Description      *string    `json:"description"`
	MaxDiscount      *float64   `json:"max_discount"`
	MinPurchaseValue *float64   `json:"min_purchase_value"`
	TotalUseLimit    *int       `json:"total_use_limit"`
	PerUserLimit     *int       `json:"per_user_limit"`
	BonusMinutes     *int       `json:"bonus_minutes"`
	NewUsersOnly     *bool      `json:"new_users_only"`
	ExpiresAt        *time.Time `json:"expires_at"`
	Origin           *string    `json:"origin"`
	Influencer       *string    `json:"influencer"`
	Status           *string    `json:"status"`
}

// UpdateCoupon updates an existing coupon. Code, discount type and value are
// immutable once created; retire the coupon and make a new one instead.
func UpdateCoupon(c *gin.Context) {
	utils.LogInfo("UpdateCoupon called")

	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid update request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var coupon models.Coupon
	if err := config.DB.First(&coupon, c.Param("id")).Error; err != nil {
		utils.LogError("Coupon not found: %s", c.Param("id"))
		utils.NotFound(c, "Coupon not found")
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case models.CouponStatusActive, models.CouponStatusInactive, models.CouponStatusExpired:
			coupon.Status = *req.Status
		default:
			utils.BadRequest(c, "Invalid status", nil)
			return
		}
	}
	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.MaxDiscount != nil {
		coupon.MaxDiscount = *req.MaxDiscount
	}
	if req.MinPurchaseValue != nil {
		coupon.MinPurchaseValue = *req.MinPurchaseValue
	}
	if req.TotalUseLimit != nil {
		coupon.TotalUseLimit = *req.TotalUseLimit
	}
	if req.PerUserLimit != nil && *req.PerUserLimit > 0 {
		coupon.PerUserLimit = *req.PerUserLimit
	}
	if req.BonusMinutes != nil {
		coupon.BonusMinutes = *req.BonusMinutes
	}
	if req.NewUsersOnly != nil {
		coupon.NewUsersOnly = *req.NewUsersOnly
	}
	if req.ExpiresAt != nil {
		coupon.ExpiresAt = req.ExpiresAt
	}
	if req.Origin != nil {
		coupon.Origin = *req.Origin
	}
	if req.Influencer != nil {
		coupon.Influencer = *req.Influencer
	}

	if err := config.DB.Save(&coupon).Error; err != nil {
		utils.LogError("Failed to update coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to update coupon", nil)
		return
	}

	utils.LogInfo("Successfully updated coupon %d (%s)", coupon.ID, coupon.Code)
	utils.Success(c, "Coupon updated successfully", formatCoupon(&coupon, time.Now()))
}

// ExpireCoupon retires a coupon. Coupons are never hard-deleted; redemption
// history must keep a valid reference.
func ExpireCoupon(c *gin.Context) {
	utils.LogInfo("ExpireCoupon called")

	var coupon models.Coupon
	if err := config.DB.First(&coupon, c.Param("id")).Error; err != nil {
		utils.LogError("Coupon not found: %s", c.Param("id"))
		utils.NotFound(c, "Coupon not found")
		return
	}

	if coupon.Status == models.CouponStatusExpired {
		utils.Success(c, "Coupon is already expired", nil)
		return
	}

	coupon.Status = models.CouponStatusExpired
	if err := config.DB.Save(&coupon).Error; err != nil {
		utils.LogError("Failed to expire coupon %d: %v", coupon.ID, err)
		utils.InternalServerError(c, "Failed to expire coupon", nil)
		return
	}

	utils.LogInfo("Expired coupon %d (%s)", coupon.ID, coupon.Code)
	utils.Success(c, "Coupon expired successfully", nil)
}
