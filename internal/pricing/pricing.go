package pricing

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// RoundToProfessionalPrice rounds a raw price to the nearest 100 and then up to
// the next price ending in 000, 500 or 990.
func RoundToProfessionalPrice(price int64) int64 {
	if price <= 0 {
		return price
	}
	rounded := (price + 50) / 100 * 100
	r := rounded % 1000
	switch {
	case r == 0:
		return rounded
	case r < 500:
		return rounded - r + 500
	default:
		return rounded - r + 990
	}
}

func CalculateDisplayPrice(basePrice, modifier int64) int64 {
	return RoundToProfessionalPrice(basePrice + modifier)
}

// FormatCLP renders a peso amount with dot thousands separators, e.g. $45.990.
func FormatCLP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := humanize.Comma(amount)
	return sign + "$" + strings.ReplaceAll(s, ",", ".")
}
