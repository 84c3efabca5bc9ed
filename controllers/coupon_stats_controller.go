package controllers

import (
	"database/sql"
	"time"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type couponStats struct {
	StatusCounts  map[string]int64 `json:"status_counts"`
	TotalUses     int64            `json:"total_uses"`
	TotalDiscount float64          `json:"total_discount_granted"`
	TotalBonus    int64            `json:"total_bonus_minutes"`
	TopCoupons    []gin.H          `json:"top_coupons"`
	UsesByOrigin  []gin.H          `json:"uses_by_origin"`
	UsesToday     int64            `json:"uses_today"`
	UsesWeek      int64            `json:"uses_last_7_days"`
	UsesMonth     int64            `json:"uses_this_month"`
	RecentUsages  []gin.H          `json:"recent_usages"`
}

// GetCouponStats aggregates coupon and usage statistics for reporting.
// The reads run in one REPEATABLE READ transaction so every query sees the
// same snapshot. Time windows are anchored at UTC midnight.
func GetCouponStats(c *gin.Context) {
	utils.LogInfo("GetCouponStats called")

	now := time.Now()
	tx := config.DB.Begin(&sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to compute statistics", nil)
		return
	}
	defer tx.Rollback()

	stats, err := collectCouponStats(tx, now)
	if err != nil {
		utils.LogError("Failed to compute coupon statistics: %v", err)
		utils.InternalServerError(c, "Failed to compute statistics", nil)
		return
	}

	utils.LogInfo("Computed coupon statistics: %d total uses", stats.TotalUses)
	utils.Success(c, "Statistics computed successfully", stats)
}

func collectCouponStats(tx *gorm.DB, now time.Time) (*couponStats, error) {
	stats := &couponStats{StatusCounts: map[string]int64{}}

	// Status counts, with time-lapsed active coupons bucketed as expired.
	rows := []struct {
		Status string
		Count  int64
	}{}
	err := tx.Model(&models.Coupon{}).
		Select(`CASE WHEN status = ? AND expires_at IS NOT NULL AND expires_at < ? THEN ? ELSE status END AS status, COUNT(*) AS count`,
			models.CouponStatusActive, now, models.CouponStatusExpired).
		Group("1").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.StatusCounts[row.Status] += row.Count
	}

	totals := struct {
		Uses     int64
		Discount float64
		Bonus    int64
	}{}
	err = tx.Model(&models.Coupon{}).
		Select("COALESCE(SUM(total_uses),0) AS uses, COALESCE(SUM(total_discount_granted),0) AS discount, COALESCE(SUM(total_bonus_minutes),0) AS bonus").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalUses = totals.Uses
	stats.TotalDiscount = totals.Discount
	stats.TotalBonus = totals.Bonus

	var top []models.Coupon
	err = tx.Where("total_uses > 0").Order("total_uses DESC").Limit(5).Find(&top).Error
	if err != nil {
		return nil, err
	}
	stats.TopCoupons = make([]gin.H, 0, len(top))
	for _, coupon := range top {
		stats.TopCoupons = append(stats.TopCoupons, gin.H{
			"code":                   coupon.Code,
			"total_uses":             coupon.TotalUses,
			"total_discount_granted": coupon.TotalDiscountGranted,
			"total_bonus_minutes":    coupon.TotalBonusMinutes,
			"status":                 coupon.Status,
		})
	}

	origins := []struct {
		Origin string
		Count  int64
	}{}
	err = tx.Model(&models.CouponUsage{}).
		Joins("JOIN coupons ON coupons.id = coupon_usages.coupon_id").
		Select("COALESCE(NULLIF(coupons.origin, ''), 'unattributed') AS origin, COUNT(*) AS count").
		Group("1").Order("count DESC").Scan(&origins).Error
	if err != nil {
		return nil, err
	}
	stats.UsesByOrigin = make([]gin.H, 0, len(origins))
	for _, row := range origins {
		stats.UsesByOrigin = append(stats.UsesByOrigin, gin.H{"origin": row.Origin, "uses": row.Count})
	}

	windows := []struct {
		name  string
		start time.Time
		dest  *int64
	}{
		{"today", utils.StartOfDayUTC(now), &stats.UsesToday},
		{"week", utils.StartOfTrailingWeekUTC(now), &stats.UsesWeek},
		{"month", utils.StartOfMonthUTC(now), &stats.UsesMonth},
	}
	for _, window := range windows {
		err = tx.Model(&models.CouponUsage{}).
			Where("created_at >= ?", window.start).
			Count(window.dest).Error
		if err != nil {
			return nil, err
		}
	}

	var recent []models.CouponUsage
	err = tx.Order("created_at DESC").Limit(10).Find(&recent).Error
	if err != nil {
		return nil, err
	}
	stats.RecentUsages = make([]gin.H, 0, len(recent))
	for _, usage := range recent {
		stats.RecentUsages = append(stats.RecentUsages, gin.H{
			"coupon_code":     usage.CouponCode,
			"user_id":         usage.UserID,
			"user_email":      usage.UserEmail,
			"discount_amount": usage.DiscountAmount,
			"bonus_minutes":   usage.BonusMinutes,
			"used_at":         usage.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return stats, nil
}
