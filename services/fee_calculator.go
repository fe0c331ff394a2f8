package services

import "math"

// FeeType selects which fee model applies to a payment.
type FeeType string

const (
	FeeTypeFixed      FeeType = "fixed"
	FeeTypePercentage FeeType = "percentage"
	FeeTypeCombined   FeeType = "combined"
)

// Fees is the breakdown of gateway fees for an amount. All values are in the
// smallest currency unit.
type Fees struct {
	Percentage  int64 `json:"percentage"`
	Fixed       int64 `json:"fixed"`
	Total       int64 `json:"total"`
	TotalAmount int64 `json:"total_amount"`
}

// FeeCalculator computes gateway fees. Pure: identical inputs always yield
// identical outputs.
type FeeCalculator struct {
	fixed int64
	rate  float64
}

func NewFeeCalculator(fixed int64, rate float64) *FeeCalculator {
	return &FeeCalculator{fixed: fixed, rate: rate}
}

// Calculate returns the fee breakdown for the amount under the given fee
// model. The percentage component is rounded to the nearest minor unit.
func (f *FeeCalculator) Calculate(amount int64, feeType FeeType) Fees {
	percentage := int64(math.Round(float64(amount) * f.rate))

	fees := Fees{Percentage: percentage, Fixed: f.fixed}
	switch feeType {
	case FeeTypePercentage:
		fees.Total = percentage
	case FeeTypeCombined:
		fees.Total = percentage + f.fixed
	default: // FeeTypeFixed
		fees.Total = f.fixed
	}
	fees.TotalAmount = amount + fees.Total
	return fees
}
