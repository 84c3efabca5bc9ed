package controllers

import (
	"time"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidateCouponRequest represents the request body for validating a coupon.
// A redemption is always attributed to a user; anonymous requests are
// rejected since the per-user rules cannot be enforced without one.
type ValidateCouponRequest struct {
	Code           string  `json:"code" binding:"required"`
	UserID         uint    `json:"user_id" binding:"required"`
	PurchaseAmount float64 `json:"purchase_amount" binding:"gte=0"`
}

// ValidateCoupon checks a coupon against the purchase context and, when
// eligible, records the redemption. Ineligibility is a 200 with
// valid=false; only infrastructure failures produce error statuses.
func ValidateCoupon(c *gin.Context) {
	utils.LogInfo("ValidateCoupon called")

	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid validation request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	code := utils.NormalizeCouponCode(req.Code)
	utils.LogInfo("Validating coupon %s for user %d, amount %.2f", code, req.UserID, req.PurchaseAmount)

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	// Lock the coupon row for the length of the transaction: concurrent
	// redemptions of the same coupon serialize here, so the usage count read
	// below cannot go stale between the check and the insert.
	var coupon models.Coupon
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("LOWER(code) = LOWER(?)", code).First(&coupon).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			utils.LogInfo("Coupon not found: %s", code)
			utils.Success(c, "Coupon validated", gin.H{
				"valid":   false,
				"message": "Coupon not found",
			})
			return
		}
		utils.LogError("Failed to look up coupon %s: %v", code, err)
		utils.InternalServerError(c, "Failed to look up coupon", nil)
		return
	}

	ctx := utils.CouponContext{
		PurchaseAmount: req.PurchaseAmount,
		HasUser:        req.UserID != 0,
		Now:            time.Now(),
	}

	if ctx.HasUser {
		var userUses int64
		if err := tx.Model(&models.CouponUsage{}).
			Where("coupon_id = ? AND user_id = ?", coupon.ID, req.UserID).
			Count(&userUses).Error; err != nil {
			tx.Rollback()
			utils.LogError("Failed to count user redemptions: %v", err)
			utils.InternalServerError(c, "Failed to validate coupon", nil)
			return
		}
		ctx.UserUses = int(userUses)

		if coupon.NewUsersOnly {
			var purchases int64
			if err := tx.Model(&models.Purchase{}).
				Where("user_id = ? AND status = ?", req.UserID, models.PurchaseStatusApproved).
				Count(&purchases).Error; err != nil {
				tx.Rollback()
				utils.LogError("Failed to count user purchases: %v", err)
				utils.InternalServerError(c, "Failed to validate coupon", nil)
				return
			}
			ctx.UserPurchases = int(purchases)
		}
	}

	verdict := utils.EvaluateCoupon(&coupon, ctx)
	if !verdict.Valid {
		tx.Rollback()
		utils.LogInfo("Coupon %s rejected: %s", code, verdict.Message)
		utils.Success(c, "Coupon validated", gin.H{
			"valid":   false,
			"message": verdict.Message,
		})
		return
	}

	// Counter increments are guarded in SQL so concurrent redemptions
	// cannot push total_uses past the limit.
	result := tx.Model(&models.Coupon{}).
		Where("id = ? AND (total_use_limit = 0 OR total_uses < total_use_limit)", coupon.ID).
		Updates(map[string]interface{}{
			"total_uses":             gorm.Expr("total_uses + 1"),
			"total_discount_granted": gorm.Expr("total_discount_granted + ?", verdict.Discount),
			"total_bonus_minutes":    gorm.Expr("total_bonus_minutes + ?", verdict.BonusMinutes),
		})
	if result.Error != nil {
		tx.Rollback()
		utils.LogError("Failed to update coupon counters for %s: %v", code, result.Error)
		utils.InternalServerError(c, "Failed to redeem coupon", nil)
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.LogInfo("Coupon %s lost a redemption race, limit reached", code)
		utils.Success(c, "Coupon validated", gin.H{
			"valid":   false,
			"message": "Coupon usage limit reached",
		})
		return
	}

	usage := models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         req.UserID,
		CouponCode:     coupon.Code,
		DiscountAmount: verdict.Discount,
		BonusMinutes:   verdict.BonusMinutes,
	}
	if ctx.HasUser {
		var user models.User
		if err := tx.First(&user, req.UserID).Error; err == nil {
			usage.UserEmail = user.Email
		}
	}
	if err := tx.Create(&usage).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to record coupon usage for %s: %v", code, err)
		utils.InternalServerError(c, "Failed to redeem coupon", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit redemption for %s: %v", code, err)
		utils.InternalServerError(c, "Failed to redeem coupon", nil)
		return
	}

	utils.LogInfo("Coupon %s redeemed by user %d, discount %.2f", code, req.UserID, verdict.Discount)
	utils.Success(c, "Coupon validated", gin.H{
		"valid":          true,
		"coupon":         coupon.Code,
		"discount_type":  coupon.DiscountType,
		"discount_value": coupon.DiscountValue,
		"discount":       verdict.Discount,
		"bonus_minutes":  verdict.BonusMinutes,
		"message":        verdict.Message,
	})
}
