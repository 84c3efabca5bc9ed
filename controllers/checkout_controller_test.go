package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Marina-Luz/TarotSphere/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func postCheckout(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/checkout/session", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	CreateCheckoutSession(c)
	return w
}

func TestCreateCheckoutSession_RejectsInvalidBody(t *testing.T) {
	cases := map[string]string{
		"empty body":      ``,
		"missing minutes": `{"user_id":"7","email":"ana@example.com"}`,
		"zero minutes":    `{"minutes":0,"user_id":"7","email":"ana@example.com"}`,
		"missing user":    `{"minutes":20,"email":"ana@example.com"}`,
		"bad email":       `{"minutes":20,"user_id":"7","email":"not-an-email"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := postCheckout(t, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid request")
		})
	}
}

func TestCreateCheckoutSession_RejectsUnknownMinutePackage(t *testing.T) {
	config.PriceTiers = map[int]string{20: "price_basic", 45: "price_plus"}

	w := postCheckout(t, `{"minutes":30,"user_id":"7","email":"ana@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown minute package")
}
