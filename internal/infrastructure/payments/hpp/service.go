package hpp

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const timestampLayout = "20060102150405"

// Request and response field names.
const (
	FieldMerchantID     = "MERCHANT_ID"
	FieldAccount        = "ACCOUNT"
	FieldOrderID        = "ORDER_ID"
	FieldAmount         = "AMOUNT"
	FieldCurrency       = "CURRENCY"
	FieldTimestamp      = "TIMESTAMP"
	FieldAutoSettle     = "AUTO_SETTLE_FLAG"
	FieldVersion        = "HPP_VERSION"
	FieldHash           = "SHA1HASH"
	FieldResponseURL    = "MERCHANT_RESPONSE_URL"
	FieldResult         = "RESULT"
	FieldMessage        = "MESSAGE"
	FieldPasRef         = "PASREF"
	FieldAuthCode       = "AUTHCODE"
	FieldCustomerEmail  = "HPP_CUSTOMER_EMAIL"
	FieldCustomerMobile = "HPP_CUSTOMER_PHONENUMBER_MOBILE"
)

var (
	ErrInvalidAmount       = errors.New("hpp: invalid amount")
	ErrInvalidCurrency     = errors.New("hpp: invalid currency")
	ErrInvalidAddress      = errors.New("hpp: invalid address")
	ErrInvalidCustomerData = errors.New("hpp: invalid customer data")
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[0-9]{3}$`)
	mobilePattern   = regexp.MustCompile(`^[0-9]{1,3}\|[0-9]{1,15}$`)
)

type AddressType int

const (
	AddressTypeBilling AddressType = iota
	AddressTypeShipping
)

// Address uses ISO 3166-1 numeric country codes.
type Address struct {
	StreetAddress1 string
	StreetAddress2 string
	StreetAddress3 string
	City           string
	PostalCode     string
	Country        string
}

// HostedPaymentData carries the 3-D Secure 2 customer fields.
type HostedPaymentData struct {
	CustomerEmail       string
	CustomerPhoneMobile string
}

// Service builds and verifies HPP messages for one merchant account.
type Service struct {
	cfg     Config
	now     func() time.Time
	orderID func() string
}

func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, now: time.Now, orderID: GenerateOrderID}, nil
}

func (s *Service) Config() Config {
	return s.cfg
}

// Charge starts a new auto-settled payment request for amount, expressed in
// major currency units.
func (s *Service) Charge(amount decimal.Decimal) *ChargeBuilder {
	return &ChargeBuilder{svc: s, amount: amount}
}

// ChargeBuilder collects the request fields. Serialize validates and signs them.
type ChargeBuilder struct {
	svc        *Service
	amount     decimal.Decimal
	currency   string
	billing    *Address
	shipping   *Address
	hostedData *HostedPaymentData
}

func (b *ChargeBuilder) WithCurrency(currency string) *ChargeBuilder {
	b.currency = currency
	return b
}

func (b *ChargeBuilder) WithAddress(a Address, t AddressType) *ChargeBuilder {
	if t == AddressTypeShipping {
		b.shipping = &a
	} else {
		b.billing = &a
	}
	return b
}

func (b *ChargeBuilder) WithHostedPaymentData(d HostedPaymentData) *ChargeBuilder {
	b.hostedData = &d
	return b
}

// Serialize produces the signed JSON request the HPP library posts to the
// gateway. The generated order id is carried in ORDER_ID.
func (b *ChargeBuilder) Serialize() (json.RawMessage, error) {
	amount, err := minorUnits(b.amount)
	if err != nil {
		return nil, err
	}
	currency := strings.TrimSpace(b.currency)
	if !currencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, b.currency)
	}

	cfg := b.svc.cfg
	version := cfg.version()
	fields := map[string]string{
		FieldMerchantID: cfg.MerchantID,
		FieldAccount:    cfg.AccountID,
		FieldOrderID:    b.svc.orderID(),
		FieldAmount:     amount,
		FieldCurrency:   currency,
		FieldTimestamp:  b.svc.now().UTC().Format(timestampLayout),
		FieldAutoSettle: "1",
		FieldVersion:    version,
	}
	if cfg.ResponseURL != "" {
		fields[FieldResponseURL] = cfg.ResponseURL
	}

	// 3-D Secure 2 makes billing address and customer contact mandatory.
	if version == "2" {
		if b.billing == nil {
			return nil, fmt.Errorf("%w: billing address is required", ErrInvalidAddress)
		}
		if b.hostedData == nil {
			return nil, fmt.Errorf("%w: customer data is required", ErrInvalidCustomerData)
		}
	}
	if b.billing != nil {
		if err := putAddress(fields, "HPP_BILLING_", *b.billing); err != nil {
			return nil, err
		}
	}
	if b.shipping != nil {
		if err := putAddress(fields, "HPP_SHIPPING_", *b.shipping); err != nil {
			return nil, err
		}
	}
	if b.hostedData != nil {
		if err := putHostedData(fields, *b.hostedData); err != nil {
			return nil, err
		}
	}

	fields[FieldHash] = signature(cfg.SharedSecret,
		fields[FieldTimestamp],
		fields[FieldMerchantID],
		fields[FieldOrderID],
		fields[FieldAmount],
		fields[FieldCurrency],
	)

	return json.Marshal(fields)
}

// minorUnits converts a major-unit amount to the gateway's integer minor
// units (two decimal places). Amounts with sub-cent precision are rejected.
func minorUnits(amount decimal.Decimal) (string, error) {
	if amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: must be positive, got %s", ErrInvalidAmount, amount.String())
	}
	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return "", fmt.Errorf("%w: %s has more than 2 decimal places", ErrInvalidAmount, amount.String())
	}
	return cents.StringFixed(0), nil
}

func putAddress(fields map[string]string, prefix string, a Address) error {
	required := []struct {
		name  string
		value string
		max   int
	}{
		{"STREET1", a.StreetAddress1, 50},
		{"CITY", a.City, 40},
		{"POSTALCODE", a.PostalCode, 16},
		{"COUNTRY", a.Country, 3},
	}
	for _, f := range required {
		v := strings.TrimSpace(f.value)
		if v == "" {
			return fmt.Errorf("%w: %s%s is required", ErrInvalidAddress, prefix, f.name)
		}
		if utf8.RuneCountInString(v) > f.max {
			return fmt.Errorf("%w: %s%s exceeds %d characters", ErrInvalidAddress, prefix, f.name, f.max)
		}
		fields[prefix+f.name] = v
	}
	if !countryPattern.MatchString(fields[prefix+"COUNTRY"]) {
		return fmt.Errorf("%w: %sCOUNTRY must be an ISO 3166-1 numeric code", ErrInvalidAddress, prefix)
	}

	for name, v := range map[string]string{"STREET2": a.StreetAddress2, "STREET3": a.StreetAddress3} {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if utf8.RuneCountInString(v) > 50 {
			return fmt.Errorf("%w: %s%s exceeds 50 characters", ErrInvalidAddress, prefix, name)
		}
		fields[prefix+name] = v
	}
	return nil
}

func putHostedData(fields map[string]string, d HostedPaymentData) error {
	email := strings.TrimSpace(d.CustomerEmail)
	if email == "" || !strings.Contains(email, "@") || len(email) > 254 {
		return fmt.Errorf("%w: customer email", ErrInvalidCustomerData)
	}
	mobile := strings.TrimSpace(d.CustomerPhoneMobile)
	if !mobilePattern.MatchString(mobile) {
		return fmt.Errorf("%w: customer mobile phone must be <country code>|<number>", ErrInvalidCustomerData)
	}
	fields[FieldCustomerEmail] = email
	fields[FieldCustomerMobile] = mobile
	return nil
}
