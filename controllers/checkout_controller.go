package controllers

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/utils"
	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v83"
)

// CheckoutRequest represents the request body for starting a checkout
type CheckoutRequest struct {
	Minutes int    `json:"minutes" binding:"required,gt=0"`
	UserID  string `json:"user_id" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
}

// CreateCheckoutSession creates a Stripe-hosted checkout session for a
// minute package and returns its redirect URL. No local state is written;
// the webhook reconciler picks the purchase up once Stripe confirms it.
func CreateCheckoutSession(c *gin.Context) {
	utils.LogInfo("CreateCheckoutSession called")

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid checkout request: %v", err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	priceID, ok := config.PriceIDForMinutes(req.Minutes)
	if !ok {
		utils.LogError("Unknown minute package requested: %d", req.Minutes)
		utils.BadRequest(c, "Unknown minute package", nil)
		return
	}
	utils.LogDebug("Resolved %d minutes to price ID %s", req.Minutes, priceID)

	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "https://" + c.Request.Host
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(origin + "/purchase/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(origin + "/purchase/cancelled"),
		CustomerEmail: stripe.String(req.Email),
		// The webhook reconciler reads these back; they are the only channel
		// correlating a session to a user and grant amount.
		Metadata: map[string]string{
			"user_id": req.UserID,
			"minutes": strconv.Itoa(req.Minutes),
		},
	}

	client := stripe.NewClient(os.Getenv("STRIPE_SECRET_KEY"))
	session, err := client.V1CheckoutSessions.Create(c.Request.Context(), params)
	if err != nil {
		utils.LogError("Failed to create checkout session for user %s: %v", req.UserID, err)
		utils.InternalServerError(c, "Failed to create checkout session", nil)
		return
	}

	utils.LogInfo("Created checkout session %s for user %s (%d minutes)", session.ID, req.UserID, req.Minutes)
	utils.Success(c, "Checkout session created", gin.H{
		"url": session.URL,
		"id":  session.ID,
		"amount_display": fmt.Sprintf("%.2f", float64(session.AmountTotal)/100),
	})
}
