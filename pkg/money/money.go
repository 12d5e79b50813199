// Package money is the percent-layer tax and formatting utility. It works
// on decimal amounts with round-half-up to two places, not on the integer
// cents stored on quotes; the two representations stay separate.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/clientdesk/clientdesk/pkg/config"
)

var oneHundred = decimal.NewFromInt(100)

// Calculator converts between net and gross amounts using the configured
// tax rates. Rates are percentages (19.0 = 19%).
type Calculator struct {
	tax    config.TaxConfig
	locale config.LocaleConfig
}

func NewCalculator(tax config.TaxConfig, locale config.LocaleConfig) *Calculator {
	return &Calculator{tax: tax, locale: locale}
}

func (c *Calculator) DefaultRate() decimal.Decimal {
	return decimal.NewFromFloat(c.tax.DefaultRate)
}

func (c *Calculator) ReducedRate() decimal.Decimal {
	return decimal.NewFromFloat(c.tax.ReducedRate)
}

// Tax is the tax amount on a net amount at the default rate.
func (c *Calculator) Tax(net decimal.Decimal) decimal.Decimal {
	return c.TaxAt(net, c.DefaultRate())
}

// TaxAt rounds net * rate/100 half-up to two decimal places.
func (c *Calculator) TaxAt(net, ratePercent decimal.Decimal) decimal.Decimal {
	return net.Mul(ratePercent.Div(oneHundred)).Round(2)
}

// Gross is net plus tax at the default rate.
func (c *Calculator) Gross(net decimal.Decimal) decimal.Decimal {
	return c.GrossAt(net, c.DefaultRate())
}

func (c *Calculator) GrossAt(net, ratePercent decimal.Decimal) decimal.Decimal {
	return net.Add(c.TaxAt(net, ratePercent)).Round(2)
}

// Currency returns the configured ISO currency code.
func (c *Calculator) Currency() string {
	return c.locale.Currency
}

// FormatAmount renders an amount with the configured currency symbol and
// locale-aware digit grouping, e.g. "€1,234.50" for en.
func (c *Calculator) FormatAmount(amount decimal.Decimal) string {
	tag, err := language.Parse(c.locale.Locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	value, _ := amount.Float64()
	return printer.Sprintf("%s%v", c.locale.CurrencySymbol,
		number.Decimal(value, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
