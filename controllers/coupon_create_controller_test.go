package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func postCreateCoupon(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/admin/coupons", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	CreateCoupon(c)
	return w
}

func TestCreateCoupon_RejectsMalformedRequests(t *testing.T) {
	cases := map[string]string{
		"empty body":    ``,
		"missing code":  `{"discount_type":"percentage","discount_value":10}`,
		"missing type":  `{"code":"TAROT10","discount_value":10}`,
		"unknown type":  `{"code":"TAROT10","discount_type":"bogus","discount_value":10}`,
		"missing value": `{"code":"TAROT10","discount_type":"percentage"}`,
		"zero value":    `{"code":"TAROT10","discount_type":"percentage","discount_value":0}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := postCreateCoupon(t, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateCoupon_RejectsPercentageOverHundred(t *testing.T) {
	w := postCreateCoupon(t, `{"code":"TAROT10","discount_type":"percentage","discount_value":150}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "percentage")
}

func TestCreateCoupon_RejectsBlankCode(t *testing.T) {
	w := postCreateCoupon(t, `{"code":"   ","discount_type":"fixed","discount_value":5}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Coupon code is required")
}

func TestCreateCoupon_RejectsPastExpiry(t *testing.T) {
	w := postCreateCoupon(t, `{"code":"TAROT10","discount_type":"fixed","discount_value":5,"expires_at":"2020-01-01T00:00:00Z"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Expiry date must be in the future")
}
