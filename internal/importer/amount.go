package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads s according to style.
// Examples: "1.234,56" (decimalComma) and "1,234.56" (decimalPoint) are both 1234.56.
func parseAmount(s string, style decimalStyle) (decimal.Decimal, error) {
	var clean string

	switch style {
	case decimalComma:
		clean = strings.ReplaceAll(s, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	default:
		clean = strings.ReplaceAll(s, ",", "")
	}

	return decimal.NewFromString(strings.ReplaceAll(clean, " ", ""))
}
