package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency symbols.
const (
	RupeeSymbol = "₹"
	// PDFRupeeSymbol replaces the rupee sign in PDFs; the core PDF fonts have
	// no glyph for it.
	PDFRupeeSymbol = "Rs."
)

// Currency renders amounts with exactly two fraction digits and Indian digit
// grouping (last three digits, then pairs): 12345678.9 → ₹1,23,45,678.90.
type Currency struct {
	Symbol string
}

// INR is the currency used on screen and in spreadsheets.
var INR = Currency{Symbol: RupeeSymbol}

// PDF is the currency used in PDF documents.
var PDF = Currency{Symbol: PDFRupeeSymbol}

// Format renders d. Negative amounts get a leading minus before the symbol.
func (c Currency) Format(d decimal.Decimal) string {
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + c.Symbol + GroupIndian(d.Abs())
}

// FormatINR renders d with the rupee symbol.
func FormatINR(d decimal.Decimal) string {
	return INR.Format(d)
}

// GroupIndian renders |d| with two decimals and Indian grouping, no symbol.
func GroupIndian(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		return intPart + "." + frac
	}
	head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail + "." + frac
}
