// Package currency formats dollar amounts for notes and CLI output.
package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// USD formats v as whole dollars with thousands separators, e.g. "$473,800".
func USD(v float64) string {
	rounded := int64(math.Round(v))
	if rounded < 0 {
		return printer.Sprintf("-$%d", -rounded)
	}
	return printer.Sprintf("$%d", rounded)
}

// SignedPercent formats a percentage with an explicit sign and one decimal,
// e.g. "+3.0%".
func SignedPercent(v float64) string {
	return printer.Sprintf("%+.1f%%", v)
}
