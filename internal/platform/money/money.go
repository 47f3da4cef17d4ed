package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// All amounts are integer US cents. Keeping cart arithmetic in integers
// means subtotals never accumulate float error across mutations.

var printer = message.NewPrinter(language.AmericanEnglish)

// LineSubtotalCents is the extended price of a single line item.
func LineSubtotalCents(unitPriceCents int64, quantity int) int64 {
	if quantity <= 0 || unitPriceCents < 0 {
		return 0
	}
	return unitPriceCents * int64(quantity)
}

const (
	shippingFlatCents = 500
	taxRatePercent    = 8
)

// ShippingCents is the flat shipping charge: $5.00 on any non-empty order,
// free when there is nothing to ship.
func ShippingCents(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	return shippingFlatCents
}

// TaxCents is the estimated tax on the subtotal, rounded to the nearest cent.
func TaxCents(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	return (subtotalCents*taxRatePercent + 50) / 100
}

// FormatCents renders cents as a localized dollar string, e.g. 1999 -> "$19.99".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := printer.Sprintf("$%v", number.Decimal(float64(cents)/100,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	if neg {
		return "-" + s
	}
	return s
}
