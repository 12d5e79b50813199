// Package billing holds the pure money math for quotes and projects.
// Quote amounts are integer minor currency units (cents) with truncating
// arithmetic; project figures are decimals. Nothing here touches storage.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/clientdesk/clientdesk/pkg/model"
)

// ItemTotal is quantity × unit price in cents, truncated toward zero.
func ItemTotal(quantity decimal.Decimal, unitPriceCents int64) int64 {
	return quantity.Mul(decimal.NewFromInt(unitPriceCents)).IntPart()
}

// Totals reduces line items to subtotal, tax amount and total, all in
// cents. taxRateBps is basis points (1900 = 19%); the tax amount is
// subtotal * rate / 10000 with integer truncation, matching the stored
// historical data.
func Totals(items []model.QuoteItem, taxRateBps int64) (subtotal, taxAmount, total int64) {
	for i := range items {
		subtotal += items[i].Total
	}
	taxAmount = subtotal * taxRateBps / 10000
	total = subtotal + taxAmount
	return subtotal, taxAmount, total
}
