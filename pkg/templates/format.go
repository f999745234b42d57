package templates

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dmitrymomot/dealdocs/pkg/deal"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// formatMoney renders cents as "$1,234.50"; negative amounts get a leading
// minus sign.
func formatMoney(m deal.Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return sign + printer.Sprintf("$%v", number.Decimal(m.Dollars(), number.Scale(2)))
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func formatCount(n int) string {
	return printer.Sprintf("%v", number.Decimal(n))
}

func formatPercent(part, whole int) string {
	if whole <= 0 {
		return "n/a"
	}
	return printer.Sprintf("%v%%", number.Decimal(float64(part)*100/float64(whole), number.Scale(2)))
}
