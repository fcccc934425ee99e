package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// Money renders an amount as "AED 1,234.50".
func Money(amount decimal.Decimal) string {
	return moneyPrinter.Sprintf("AED %.2f", amount.Round(2).InexactFloat64())
}
