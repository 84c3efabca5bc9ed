package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/Marina-Luz/TarotSphere/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupIntegrationDB wires config.DB to a real Postgres instance. The tests
// that need it skip when TEST_DATABASE_DSN is unset; the locking and
// idempotency behavior under test does not exist in lighter stand-ins.
func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Purchase{},
		&models.Coupon{},
		&models.CouponUsage{},
	))
	require.NoError(t, db.Exec(
		"TRUNCATE coupon_usages, coupons, purchases, users RESTART IDENTITY CASCADE",
	).Error)

	config.DB = db
	return db
}

// Replaying a completed-session event must credit the user exactly once and
// leave exactly one purchase record.
func TestStripeWebhook_ReplayCreditsOnce(t *testing.T) {
	db := setupIntegrationDB(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	user := models.User{Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, db.Create(&user).Error)

	payload := []byte(`{"id":"evt_replay_1","type":"checkout.session.completed","data":{"object":{"id":"cs_replay_1","amount_total":4900,"currency":"brl","metadata":{"user_id":"1","minutes":"20"}}}}`)
	signature := signPayload(payload, webhookTestSecret, time.Now())

	first := postWebhook(t, payload, signature)
	second := postWebhook(t, payload, signature)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"received":true}`, second.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, 20, reloaded.MinutesAvailable)

	var purchases int64
	require.NoError(t, db.Model(&models.Purchase{}).
		Where("stripe_session_id = ?", "cs_replay_1").Count(&purchases).Error)
	assert.Equal(t, int64(1), purchases)
}

// Concurrent redemptions by the same user must serialize on the coupon row:
// a per-user limit of one admits exactly one of them.
func TestValidateCoupon_PerUserLimitUnderConcurrency(t *testing.T) {
	db := setupIntegrationDB(t)
	gin.SetMode(gin.TestMode)

	user := models.User{Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, db.Create(&user).Error)

	coupon := models.Coupon{
		Code:          "ONCEONLY",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 5,
		PerUserLimit:  1,
		StartsAt:      time.Now().Add(-time.Hour),
		Status:        models.CouponStatusActive,
	}
	require.NoError(t, db.Create(&coupon).Error)

	const attempts = 4
	results := make([]*httptest.ResponseRecorder, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/v1/coupons/validate",
				strings.NewReader(`{"code":"ONCEONLY","user_id":1,"purchase_amount":50}`))
			c.Request.Header.Set("Content-Type", "application/json")
			ValidateCoupon(c)
			results[i] = w
		}(i)
	}
	wg.Wait()

	redeemed := 0
	for _, w := range results {
		require.Equal(t, http.StatusOK, w.Code)
		if strings.Contains(w.Body.String(), `"valid":true`) {
			redeemed++
		}
	}
	assert.Equal(t, 1, redeemed)

	var usages int64
	require.NoError(t, db.Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", coupon.ID, user.ID).Count(&usages).Error)
	assert.Equal(t, int64(1), usages)

	var reloaded models.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.TotalUses)
}
