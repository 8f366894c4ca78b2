// Package format renders money and rates for people to read.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	if amount < 0 && NumericCurrency(amount) != "0.00" {
		return "-$" + NumericCurrency(math.Abs(amount))
	}
	return "$" + NumericCurrency(math.Abs(amount))
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0.00"
	}
	rounded := math.Round(amount*100) / 100
	if rounded == 0 {
		rounded = 0
	}
	return printer.Sprintf("%.2f", rounded)
}

// WholeCurrency drops the cents (e.g., "$1,234").
func WholeCurrency(amount float64) string {
	rounded := math.Round(amount)
	if rounded < 0 {
		return printer.Sprintf("-$%d", int64(-rounded))
	}
	return printer.Sprintf("$%d", int64(rounded))
}

// Percent renders a percentage value such as 6.5 as "6.50%".
func Percent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "n/a"
	}
	return printer.Sprintf("%.2f%%", value)
}
