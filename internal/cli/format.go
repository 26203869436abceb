// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatRupees formats an amount with the currency prefix and digit grouping.
// e.g., 1234.5 -> "Rs. 1,234.5", -8000 -> "Rs. -8,000"
func FormatRupees(d decimal.Decimal) string {
	return "Rs. " + FormatAmount(d)
}

// FormatAmount groups digits and keeps at most two decimals.
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return humanize.CommafWithDigits(f, 2)
}

// FormatPercent formats a 0-100 percentage value.
// e.g., 62.5 -> "62.5%"
func FormatPercent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

// FormatContribution is FormatPercent, except a partner with no attributed
// work shows "None".
func FormatContribution(d decimal.Decimal) string {
	if d.IsZero() {
		return "None"
	}
	return FormatPercent(d)
}

// FormatCount adds comma separators to a record count.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:n-1]), " ") + "…"
}

// ShortID returns the first block of a uuid, enough to address a record by prefix.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
