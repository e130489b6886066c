package types

import "github.com/shopspring/decimal"

// OrderTotals is the server-computed money block persisted with each order.
// Every field is recomputed at submission time; client-declared values are
// treated as display hints only.
type OrderTotals struct {
	ItemsSubtotal decimal.Decimal `json:"items_subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Discounts     decimal.Decimal `json:"discounts"`
	Total         decimal.Decimal `json:"total"`
}
