package controllers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// ExportCouponStats downloads the coupon statistics as an Excel workbook
func ExportCouponStats(c *gin.Context) {
	utils.LogInfo("ExportCouponStats called")

	now := time.Now()
	tx := config.DB.Begin(&sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if tx.Error != nil {
		utils.LogError("Failed to start transaction: %v", tx.Error)
		utils.InternalServerError(c, "Failed to export statistics", nil)
		return
	}
	defer tx.Rollback()

	stats, err := collectCouponStats(tx, now)
	if err != nil {
		utils.LogError("Failed to compute coupon statistics: %v", err)
		utils.InternalServerError(c, "Failed to export statistics", nil)
		return
	}

	var coupons []models.Coupon
	if err := tx.Order("total_uses DESC").Find(&coupons).Error; err != nil {
		utils.LogError("Failed to fetch coupons for export: %v", err)
		utils.InternalServerError(c, "Failed to export statistics", nil)
		return
	}
	utils.LogDebug("Exporting %d coupons to Excel", len(coupons))

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Coupon Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("TAROTSPHERE - Coupon Report")
	dateRow := sheet.AddRow()
	dateRow.AddCell().SetString("Generated: " + now.UTC().Format("2006-01-02 15:04:05") + " UTC")
	sheet.AddRow()

	summary := [][2]string{
		{"Total redemptions", fmt.Sprintf("%d", stats.TotalUses)},
		{"Total discount granted", fmt.Sprintf("%.2f", stats.TotalDiscount)},
		{"Total bonus minutes", fmt.Sprintf("%d", stats.TotalBonus)},
		{"Redemptions today", fmt.Sprintf("%d", stats.UsesToday)},
		{"Redemptions last 7 days", fmt.Sprintf("%d", stats.UsesWeek)},
		{"Redemptions this month", fmt.Sprintf("%d", stats.UsesMonth)},
	}
	for _, line := range summary {
		row := sheet.AddRow()
		row.AddCell().SetString(line[0])
		row.AddCell().SetString(line[1])
	}
	sheet.AddRow()

	headers := []string{"Code", "Type", "Value", "Status", "Origin", "Influencer", "Uses", "Discount Granted", "Bonus Minutes", "Expires"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for i := range coupons {
		coupon := &coupons[i]
		expiry := "never"
		if coupon.ExpiresAt != nil {
			expiry = coupon.ExpiresAt.Format("2006-01-02")
		}
		status := coupon.Status
		if utils.IsCouponExpired(coupon, now) {
			status = models.CouponStatusExpired
		}

		row := sheet.AddRow()
		row.AddCell().SetString(coupon.Code)
		row.AddCell().SetString(coupon.DiscountType)
		row.AddCell().SetFloat(coupon.DiscountValue)
		row.AddCell().SetString(status)
		row.AddCell().SetString(coupon.Origin)
		row.AddCell().SetString(coupon.Influencer)
		row.AddCell().SetInt(coupon.TotalUses)
		row.AddCell().SetFloat(coupon.TotalDiscountGranted)
		row.AddCell().SetInt(coupon.TotalBonusMinutes)
		row.AddCell().SetString(expiry)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=coupon_report_%s.xlsx", now.UTC().Format("2006-01-02")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		return
	}
	utils.LogInfo("Coupon report exported successfully")
}
