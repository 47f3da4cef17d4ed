package money

import "testing"

func TestLineSubtotalCents(t *testing.T) {
	if got := LineSubtotalCents(1999, 2); got != 3998 {
		t.Fatalf("LineSubtotalCents(1999, 2) = %d, want 3998", got)
	}
	if got := LineSubtotalCents(1999, 0); got != 0 {
		t.Fatalf("LineSubtotalCents with zero quantity = %d, want 0", got)
	}
	if got := LineSubtotalCents(-5, 3); got != 0 {
		t.Fatalf("LineSubtotalCents with negative price = %d, want 0", got)
	}
}

func TestShippingCents(t *testing.T) {
	if got := ShippingCents(0); got != 0 {
		t.Fatalf("ShippingCents(0) = %d, want 0 (nothing to ship)", got)
	}
	if got := ShippingCents(1); got != 500 {
		t.Fatalf("ShippingCents(1) = %d, want 500", got)
	}
	if got := ShippingCents(123456); got != 500 {
		t.Fatalf("ShippingCents(123456) = %d, want 500 (flat rate)", got)
	}
}

func TestTaxCents(t *testing.T) {
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{0, 0},
		{100, 8},
		{1999, 160}, // 159.92 rounds to the nearest cent
		{3998, 320},
		{12, 1}, // 0.96 rounds up, not truncated
	}
	for _, tc := range cases {
		if got := TaxCents(tc.subtotal); got != tc.want {
			t.Fatalf("TaxCents(%d) = %d, want %d", tc.subtotal, got, tc.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{1999, "$19.99"},
		{3998, "$39.98"},
		{123456789, "$1,234,567.89"},
		{-1999, "-$19.99"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
