package utils

import (
	"time"

	"github.com/Marina-Luz/TarotSphere/models"
)

// CouponContext carries everything the eligibility rules need besides the
// coupon itself: the purchase being discounted and the caller's history,
// read from the store before evaluation.
type CouponContext struct {
	PurchaseAmount float64
	HasUser        bool
	UserUses       int // prior redemptions of this coupon by the user
	UserPurchases  int // approved purchases by the user, any coupon
	Now            time.Time
}

// CouponVerdict is the outcome of evaluating a coupon. An ineligible coupon
// is an ordinary negative verdict, never an error.
type CouponVerdict struct {
	Valid        bool
	Message      string
	Discount     float64
	BonusMinutes int
}

// EvaluateCoupon runs the eligibility rules in order, first failure wins:
// status, validity window, total-use limit, new-users-only, per-user limit,
// minimum purchase value. It is a pure function over a coupon snapshot so
// the rules are testable without a database; the caller persists the
// redemption separately.
func EvaluateCoupon(coupon *models.Coupon, ctx CouponContext) CouponVerdict {
	if coupon.Status != models.CouponStatusActive {
		return CouponVerdict{Message: "Coupon is not active"}
	}

	// The time window wins over the stored status: an "active" coupon whose
	// end date has passed is still expired.
	if ctx.Now.Before(coupon.StartsAt) {
		return CouponVerdict{Message: "Coupon is not valid yet"}
	}
	if coupon.ExpiresAt != nil && ctx.Now.After(*coupon.ExpiresAt) {
		return CouponVerdict{Message: "Coupon has expired"}
	}

	if coupon.TotalUseLimit > 0 && coupon.TotalUses >= coupon.TotalUseLimit {
		return CouponVerdict{Message: "Coupon usage limit reached"}
	}

	if coupon.NewUsersOnly && ctx.HasUser && ctx.UserPurchases > 0 {
		return CouponVerdict{Message: "Coupon is valid for new users only"}
	}

	if coupon.PerUserLimit > 0 && ctx.HasUser && ctx.UserUses >= coupon.PerUserLimit {
		return CouponVerdict{Message: "You have already used this coupon"}
	}

	if ctx.PurchaseAmount < coupon.MinPurchaseValue {
		return CouponVerdict{Message: "Purchase amount is below the coupon minimum"}
	}

	return CouponVerdict{
		Valid:        true,
		Message:      "Coupon applied successfully",
		Discount:     CouponDiscount(coupon, ctx.PurchaseAmount),
		BonusMinutes: coupon.BonusMinutes,
	}
}

// CouponDiscount computes the monetary discount for a purchase amount.
// Percentage discounts are capped at MaxDiscount when one is set; both types
// are clamped to the purchase amount so the result is never negative and
// never exceeds what is being paid.
func CouponDiscount(coupon *models.Coupon, amount float64) float64 {
	var discount float64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = amount * coupon.DiscountValue / 100
	case models.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		return 0
	}

	if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
		discount = coupon.MaxDiscount
	}
	if discount > amount {
		discount = amount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// IsCouponExpired reports whether a coupon is past its end date or already
// marked expired, regardless of the stored status field.
func IsCouponExpired(coupon *models.Coupon, now time.Time) bool {
	if coupon.Status == models.CouponStatusExpired {
		return true
	}
	return coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt)
}
