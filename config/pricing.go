package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PriceTiers maps a consultation-minute package to its Stripe price ID.
// Loaded once at startup; tests overwrite it with fixtures.
var PriceTiers map[int]string

// LoadPriceTiers parses MINUTE_PACKAGES, e.g.
// "20=price_abc,45=price_def,90=price_ghi".
func LoadPriceTiers() error {
	raw := os.Getenv("MINUTE_PACKAGES")
	if raw == "" {
		return fmt.Errorf("MINUTE_PACKAGES is not set")
	}

	tiers := make(map[int]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("malformed minute package entry: %q", pair)
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || minutes <= 0 {
			return fmt.Errorf("invalid minute quantity in entry: %q", pair)
		}
		priceID := strings.TrimSpace(parts[1])
		if priceID == "" {
			return fmt.Errorf("missing price id in entry: %q", pair)
		}
		tiers[minutes] = priceID
	}

	PriceTiers = tiers
	return nil
}

// PriceIDForMinutes returns the Stripe price ID for a minute package
func PriceIDForMinutes(minutes int) (string, bool) {
	priceID, ok := PriceTiers[minutes]
	return priceID, ok
}
