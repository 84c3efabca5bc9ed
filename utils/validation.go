package utils

import (
	"fmt"
	"strings"

	"github.com/Marina-Luz/TarotSphere/models"
)

// NormalizeCouponCode trims surrounding whitespace and uppercases a coupon
// code. All lookups and uniqueness checks operate on the normalized form.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCouponValue checks the discount value against its type
func ValidateCouponValue(discountType string, value float64) error {
	switch discountType {
	case models.DiscountTypePercentage:
		if value <= 0 || value > 100 {
			return fmt.Errorf("percentage discount must be between 0 and 100")
		}
	case models.DiscountTypeFixed:
		if value <= 0 {
			return fmt.Errorf("fixed discount must be positive")
		}
	default:
		return fmt.Errorf("discount type must be %q or %q",
			models.DiscountTypePercentage, models.DiscountTypeFixed)
	}
	return nil
}
