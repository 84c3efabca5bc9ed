package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v83"
	"gorm.io/gorm"
)

const webhookTestSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way Stripe's SDK does:
// HMAC-SHA256 over "<timestamp>.<payload>" with the endpoint secret.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/webhook/stripe", strings.NewReader(string(payload)))
	if signature != "" {
		c.Request.Header.Set("Stripe-Signature", signature)
	}

	StripeWebhook(c)
	return w
}

func TestStripeWebhook_RejectsMissingSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	w := postWebhook(t, payload, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
}

func TestStripeWebhook_RejectsTamperedPayload(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	signature := signPayload(payload, webhookTestSecret, time.Now())
	tampered := []byte(`{"id":"evt_2","type":"checkout.session.completed"}`)

	w := postWebhook(t, tampered, signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
}

func TestStripeWebhook_RejectsWrongSecret(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	signature := signPayload(payload, "whsec_other_secret", time.Now())

	w := postWebhook(t, payload, signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook_AcknowledgesUnhandledEventTypes(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{}}}`)
	signature := signPayload(payload, webhookTestSecret, time.Now())

	w := postWebhook(t, payload, signature)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestStripeWebhook_AcknowledgesUnusableMetadata(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookTestSecret)

	// A completed session with no grant metadata cannot be reconciled; the
	// event is acked so it is not redelivered forever.
	cases := map[string]string{
		"no metadata":        `{}`,
		"missing minutes":    `{"user_id":"7"}`,
		"zero minutes":       `{"user_id":"7","minutes":"0"}`,
		"non-numeric user":   `{"user_id":"abc","minutes":"20"}`,
		"negative minutes":   `{"user_id":"7","minutes":"-5"}`,
	}

	for name, metadata := range cases {
		t.Run(name, func(t *testing.T) {
			payload := []byte(fmt.Sprintf(
				`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","metadata":%s}}}`,
				metadata,
			))
			signature := signPayload(payload, webhookTestSecret, time.Now())

			w := postWebhook(t, payload, signature)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"received":true}`, w.Body.String())
		})
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":                  {nil, false},
		"unrelated":            {errors.New("connection refused"), false},
		"translated":           {gorm.ErrDuplicatedKey, true},
		"wrapped translated":   {fmt.Errorf("create purchase: %w", gorm.ErrDuplicatedKey), true},
		"postgres unique":      {&pgconn.PgError{Code: "23505"}, true},
		"wrapped postgres":     {fmt.Errorf("create purchase: %w", &pgconn.PgError{Code: "23505"}), true},
		"postgres other class": {&pgconn.PgError{Code: "23503"}, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, isDuplicateKeyError(tc.err))
		})
	}
}

func TestExtractSessionGrant(t *testing.T) {
	var session stripe.CheckoutSession
	payload := []byte(`{"id":"cs_test_1","metadata":{"user_id":"42","minutes":"45"}}`)
	assert.NoError(t, json.Unmarshal(payload, &session))

	userID, minutes, ok := extractSessionGrant(&session)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, 45, minutes)
}
