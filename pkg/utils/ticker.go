package utils

import (
	"regexp"
	"strings"
)

var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,14}$`)

// NormalizeTicker trims and upper-cases user input.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidTicker reports whether s looks like an exchange symbol after
// normalization.
func ValidTicker(s string) bool {
	return tickerPattern.MatchString(NormalizeTicker(s))
}

// YahooSymbol converts class-share notation to Yahoo's form, e.g. "BRK.B" to
// "BRK-B". Index symbols starting with '^' are left alone.
func YahooSymbol(ticker string) string {
	t := NormalizeTicker(ticker)
	if strings.HasPrefix(t, "^") {
		return t
	}
	return strings.ReplaceAll(t, ".", "-")
}
