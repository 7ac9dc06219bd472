package entities

import "github.com/shopspring/decimal"

// Product is the priced item a checkout session charges for.
//
// It is read-only for this service; Price keeps the store's exact decimal
// representation so no floating point rounding happens before the gateway
// converts it to minor units.

type Product struct {
	ID    string          `json:"id"`
	Price decimal.Decimal `json:"price"`
}
