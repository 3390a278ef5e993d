package services

import "testing"

func TestCalculatePrice(t *testing.T) {
	cases := []struct {
		name  string
		input PricingInput
		want  PriceBreakdown
	}{
		{
			name:  "no discount no autopay",
			input: PricingInput{BasePrice: 100},
			want:  PriceBreakdown{Base: 100, DiscountAmount: 0, AdminFee: 5, Tax: 7.35, Total: 112.35},
		},
		{
			name:  "autopay waives admin fee",
			input: PricingInput{BasePrice: 100, AutoPayEnabled: true},
			want:  PriceBreakdown{Base: 100, DiscountAmount: 0, AdminFee: 0, Tax: 7, Total: 107},
		},
		{
			name:  "discount applies to base before fee and tax",
			input: PricingInput{BasePrice: 200, DiscountPercent: 25},
			want:  PriceBreakdown{Base: 200, DiscountAmount: 50, AdminFee: 7.5, Tax: 11.03, Total: 168.53},
		},
		{
			name:  "full discount",
			input: PricingInput{BasePrice: 150, DiscountPercent: 100},
			want:  PriceBreakdown{Base: 150, DiscountAmount: 150, AdminFee: 0, Tax: 0, Total: 0},
		},
		{
			name:  "fractional cents round half up",
			input: PricingInput{BasePrice: 99.99, DiscountPercent: 10},
			want:  PriceBreakdown{Base: 99.99, DiscountAmount: 10, AdminFee: 4.5, Tax: 6.61, Total: 101.1},
		},
		{
			name:  "negative base treated as zero",
			input: PricingInput{BasePrice: -10},
			want:  PriceBreakdown{Base: 0, DiscountAmount: 0, AdminFee: 0, Tax: 0, Total: 0},
		},
		{
			name:  "percent clamped to 100",
			input: PricingInput{BasePrice: 80, DiscountPercent: 250},
			want:  PriceBreakdown{Base: 80, DiscountAmount: 80, AdminFee: 0, Tax: 0, Total: 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePrice(tc.input)
			if got != tc.want {
				t.Fatalf("CalculatePrice(%+v) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}
