// Package money formats decimal amounts and timestamps the way the
// storefront displays them: Brazilian Portuguese locale, BRL currency.
package money

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders an amount as Brazilian real, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	return printer.Sprintf("R$ %v", number.Decimal(value, number.Scale(2)))
}

// FormatDate renders a timestamp as dd/mm/yyyy; zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatDateTime renders a timestamp as dd/mm/yyyy hh:mm; zero time renders
// empty.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}
