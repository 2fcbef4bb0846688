package domain

import "github.com/shopspring/decimal"

// The flag is package-global in shopspring/decimal, so setting it here
// changes JSON encoding of every decimal.Decimal in the process, not only
// the domain types. Prices and balances travel as JSON numbers on the wire
// and in snapshots; nothing in this module relies on quoted decimals.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// FormatMoney renders an amount as dollars with two decimals, e.g. "$50.00".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
