package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// GetPurchases lists reconciled purchases, newest first
func GetPurchases(c *gin.Context) {
	utils.LogInfo("GetPurchases called")

	pagination := utils.NewPagination(c)
	query := config.DB.Model(&models.Purchase{})

	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count purchases: %v", err)
		utils.InternalServerError(c, "Failed to count purchases", nil)
		return
	}
	pagination.SetTotal(total)

	var purchases []models.Purchase
	if err := query.Preload("User").Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&purchases).Error; err != nil {
		utils.LogError("Failed to fetch purchases: %v", err)
		utils.InternalServerError(c, "Failed to fetch purchases", nil)
		return
	}

	formatted := make([]gin.H, 0, len(purchases))
	for _, purchase := range purchases {
		formatted = append(formatted, gin.H{
			"id":                purchase.ID,
			"user_id":           purchase.UserID,
			"user_email":        purchase.User.Email,
			"minutes":           purchase.Minutes,
			"amount":            fmt.Sprintf("%.2f", purchase.Amount),
			"currency":          purchase.Currency,
			"status":            purchase.Status,
			"stripe_session_id": purchase.StripeSessionID,
			"created_at":        purchase.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.LogInfo("Retrieved %d purchases out of %d total", len(purchases), total)
	utils.Success(c, "Purchases retrieved successfully", gin.H{
		"purchases":  formatted,
		"pagination": pagination.Meta(),
	})
}

// DownloadPurchaseReceipt generates and returns a PDF receipt for a purchase
func DownloadPurchaseReceipt(c *gin.Context) {
	utils.LogInfo("DownloadPurchaseReceipt called")

	purchaseID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.LogError("Invalid purchase ID format: %v", err)
		utils.BadRequest(c, "Invalid purchase ID", nil)
		return
	}

	var purchase models.Purchase
	if err := config.DB.Preload("User").First(&purchase, purchaseID).Error; err != nil {
		utils.LogError("Purchase not found: %d", purchaseID)
		utils.NotFound(c, "Purchase not found")
		return
	}
	utils.LogInfo("Generating receipt for purchase ID: %d", purchase.ID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "TarotSphere")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Online tarot consultations")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@tarotsphere.com")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Receipt No: "+strconv.Itoa(int(purchase.ID)))
	pdf.Cell(70, 8, "Date: "+purchase.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payment Ref: "+purchase.StripeSessionID)
	pdf.Ln(8)
	pdf.Cell(60, 8, "Status: "+purchase.Status)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, purchase.User.Name)
	pdf.Ln(6)
	pdf.Cell(100, 8, purchase.User.Email)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Minutes", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(90, 8, "Consultation minute package", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, strconv.Itoa(purchase.Minutes), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f %s", purchase.Amount, purchase.Currency), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "I", 12)
	pdf.Cell(0, 10, "Thank you for choosing TarotSphere!")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to generate receipt PDF: %v", err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%d.pdf", purchase.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	utils.LogInfo("Receipt download completed for purchase ID: %d", purchase.ID)
}
