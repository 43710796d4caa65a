package dashboard

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoData is shown for metrics that are undefined on an empty selection.
const NoData = "no data"

// FormatCurrency renders v as "$1,234" (places=0) or "$1,234.57" (places=2).
func FormatCurrency(v float64, places int32) string {
	d := decimal.NewFromFloat(v).Round(places)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(places)

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	b.WriteString(groupThousands(intPart))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
