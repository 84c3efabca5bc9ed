package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	stripe "github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"gorm.io/gorm"
)

// Stripe caps webhook payloads well below this; anything larger is garbage.
const maxWebhookBody = 65536

// StripeWebhook reconciles asynchronous payment notifications. The raw body
// must be verified before any parsing; a verified checkout.session.completed
// event credits the purchased minutes and records the Purchase in a single
// transaction, keyed idempotently on the session ID.
func StripeWebhook(c *gin.Context) {
	utils.LogInfo("StripeWebhook called")

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Invalid payload", nil)
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		utils.LogError("Webhook signature verification failed: %v", err)
		utils.BadRequest(c, "Invalid signature", nil)
		return
	}
	utils.LogDebug("Verified webhook event %s of type %s", event.ID, event.Type)

	// Events this service does not act on are acknowledged so Stripe stops
	// redelivering them.
	if event.Type != "checkout.session.completed" {
		utils.LogDebug("Ignoring event type %s", event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		utils.LogError("Failed to unmarshal checkout session from event %s: %v", event.ID, err)
		utils.BadRequest(c, "Malformed event payload", nil)
		return
	}

	userID, minutes, ok := extractSessionGrant(&session)
	if !ok {
		// Unprocessable but not retryable: ack so Stripe stops resending.
		utils.LogError("Session %s carries unusable metadata: %+v", session.ID, session.Metadata)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	utils.LogInfo("Reconciling session %s: %d minutes for user %d", session.ID, minutes, userID)

	purchase := models.Purchase{
		UserID:          userID,
		Minutes:         minutes,
		Amount:          float64(session.AmountTotal) / 100,
		Currency:        strings.ToUpper(string(session.Currency)),
		Status:          models.PurchaseStatusApproved,
		StripeSessionID: session.ID,
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.LogError("Failed to start transaction for session %s: %v", session.ID, tx.Error)
		utils.InternalServerError(c, "Failed to process event", nil)
		return
	}

	// Insert-first-wins: the unique index on stripe_session_id turns a
	// redelivered event into a duplicate-key error before any credit.
	if err := tx.Create(&purchase).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyError(err) {
			utils.LogInfo("Session %s already reconciled, acknowledging redelivery", session.ID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		utils.LogError("Failed to record purchase for session %s: %v", session.ID, err)
		utils.InternalServerError(c, "Failed to process event", nil)
		return
	}

	result := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("minutes_available", gorm.Expr("minutes_available + ?", minutes))
	if result.Error != nil {
		tx.Rollback()
		utils.LogError("Failed to credit %d minutes to user %d: %v", minutes, userID, result.Error)
		utils.InternalServerError(c, "Failed to process event", nil)
		return
	}
	if result.RowsAffected == 0 {
		// Unknown user: keep the purchase record out too, and ack. Retrying
		// will not make the user exist.
		tx.Rollback()
		utils.LogError("Session %s references unknown user %d", session.ID, userID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit reconciliation for session %s: %v", session.ID, err)
		utils.InternalServerError(c, "Failed to process event", nil)
		return
	}
	utils.LogInfo("Credited %d minutes to user %d for session %s", minutes, userID, session.ID)

	if email := buyerEmail(&session); email != "" {
		if err := utils.SendPurchaseConfirmation(email, minutes, purchase.Amount, purchase.Currency); err != nil {
			utils.LogError("Failed to send confirmation email for session %s: %v", session.ID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// extractSessionGrant reads the user and minute grant back out of the
// session metadata written at checkout initiation.
func extractSessionGrant(session *stripe.CheckoutSession) (uint, int, bool) {
	if session.Metadata == nil {
		return 0, 0, false
	}

	userID, err := strconv.ParseUint(session.Metadata["user_id"], 10, 32)
	if err != nil || userID == 0 {
		return 0, 0, false
	}

	minutes, err := strconv.Atoi(session.Metadata["minutes"])
	if err != nil || minutes <= 0 {
		return 0, 0, false
	}

	return uint(userID), minutes, true
}

func buyerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

// isDuplicateKeyError recognizes unique-constraint violations both as gorm's
// translated error and as the raw Postgres error (SQLSTATE 23505), so the
// check holds whether or not the statement went through error translation.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
