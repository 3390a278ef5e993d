package services

import "math"

const (
	adminFeeRate = 0.05
	taxRate      = 0.07
)

// PricingInput feeds the single price calculation used by every enrollment
// path. AutoPayEnabled waives the admin fee.
type PricingInput struct {
	BasePrice       float64
	DiscountPercent int
	AutoPayEnabled  bool
}

type PriceBreakdown struct {
	Base           float64 `json:"base"`
	DiscountAmount float64 `json:"discount_amount"`
	AdminFee       float64 `json:"admin_fee"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

// CalculatePrice derives the full breakdown: the discount applies to the base
// price, the admin fee is 5% of the discounted base (zero with auto-pay), and
// tax is 7% of the discounted base plus the fee. All amounts are rounded to
// cents.
func CalculatePrice(input PricingInput) PriceBreakdown {
	base := input.BasePrice
	if base < 0 {
		base = 0
	}

	percent := input.DiscountPercent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	discount := roundCents(base * float64(percent) / 100)
	discounted := base - discount

	adminFee := 0.0
	if !input.AutoPayEnabled {
		adminFee = roundCents(discounted * adminFeeRate)
	}

	tax := roundCents((discounted + adminFee) * taxRate)

	return PriceBreakdown{
		Base:           base,
		DiscountAmount: discount,
		AdminFee:       adminFee,
		Tax:            tax,
		Total:          roundCents(discounted + adminFee + tax),
	}
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
