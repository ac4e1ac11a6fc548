/*
format.go - Currency and price formatting

Whole-dollar amounts render with thousands separators and no decimals
(TWD-style); prices render with one decimal place.
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency renders a whole-dollar amount, e.g. "$1,234,567".
func Currency(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	s := amount.Abs().Round(0).String()
	s = groupThousands(s)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// Price renders a share price with one decimal, e.g. "100.5".
func Price(p decimal.Decimal) string {
	return p.StringFixed(1)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
