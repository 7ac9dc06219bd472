package entities

import "github.com/shopspring/decimal"

// Address is the billing address sent to the hosted payment page.
// Country is the ISO 3166-1 numeric code (e.g. "372").
type Address struct {
	StreetAddress1 string `json:"street_address_1"`
	StreetAddress2 string `json:"street_address_2,omitempty"`
	StreetAddress3 string `json:"street_address_3,omitempty"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
}

// CustomerData carries the 3-D Secure 2 customer fields.
// PhoneMobile uses the gateway format "<country code>|<number>".
type CustomerData struct {
	Email       string `json:"email"`
	PhoneMobile string `json:"phone_mobile"`
}

type HostedSessionRequest struct {
	Amount         decimal.Decimal
	Currency       string
	BillingAddress Address
	Customer       CustomerData
}

// ResponseCodeApproved is the gateway RESULT for an authorised payment.
const ResponseCodeApproved = "00"

// GatewayResult is the authenticated outcome posted back by the gateway.
type GatewayResult struct {
	OrderID         string
	ResponseCode    string
	ResponseMessage string
	PasRef          string
	AuthCode        string
	Values          map[string]string
}

func (r GatewayResult) Approved() bool {
	return r.ResponseCode == ResponseCodeApproved
}
