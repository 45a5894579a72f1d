// Package compare computes proportional (per unit) prices of product offers
// and finds the cheapest ones.
package compare

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimals proportional prices are rounded to.
const PricePrecision = 2

// maxExponent bounds the decimal exponent of accepted input. Values like
// 1e-20000000 would otherwise make division and rounding crawl.
const maxExponent = 32

// ParseDecimal reads a user typed number. Both comma and period are accepted
// as decimal separator. Empty or malformed input yields zero, and so does a
// number whose exponent lies outside ±maxExponent.
func ParseDecimal(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero
	}
	return d
}

// ComputeUnitPrice returns price/amount multiplied by scaleFactor, rounded
// half away from zero to PricePrecision decimals.
//
// A zero result means the row is not usable yet: it is returned whenever the
// price or the amount is missing, malformed or zero, and when the quotient
// does not fit a finite float64.
func ComputeUnitPrice(priceRaw, amountRaw string, scaleFactor float64) float64 {
	price := ParseDecimal(priceRaw)
	amount := ParseDecimal(amountRaw)
	if price.IsZero() || amount.IsZero() {
		return 0
	}
	if !isFinite(scaleFactor) {
		return 0
	}

	v := price.
		Div(amount).
		Mul(decimal.NewFromFloat(scaleFactor)).
		Round(PricePrecision).
		InexactFloat64()
	if !isFinite(v) {
		return 0
	}
	return v
}

// FormatPrice renders a proportional price with exactly two decimals.
// Non-finite values render as zero.
func FormatPrice(v float64) string {
	if !isFinite(v) {
		return decimal.Zero.StringFixed(PricePrecision)
	}
	return decimal.NewFromFloat(v).StringFixed(PricePrecision)
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
