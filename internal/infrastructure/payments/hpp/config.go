// Package hpp implements the Global Payments (Realex) Hosted Payment Page JSON
// protocol: building signed checkout requests and verifying the signed
// responses the HPP posts back through the payer's browser.
package hpp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultVersion    = "2"
	SandboxServiceURL = "https://pay.sandbox.realexpayments.com/pay"
)

var ErrInvalidConfig = errors.New("hpp: invalid config")

// Config holds the merchant credentials issued by the gateway.
type Config struct {
	MerchantID   string
	AccountID    string
	SharedSecret string
	ServiceURL   string
	// Version is the HPP_VERSION sent with every request. Version 2 enables
	// the 3-D Secure 2 customer and address fields.
	Version string
	// ResponseURL, when set, is sent as MERCHANT_RESPONSE_URL and overrides
	// the response url configured on the gateway account.
	ResponseURL string
}

func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.MerchantID) == "":
		return fmt.Errorf("%w: merchant id is required", ErrInvalidConfig)
	case strings.TrimSpace(c.SharedSecret) == "":
		return fmt.Errorf("%w: shared secret is required", ErrInvalidConfig)
	case strings.TrimSpace(c.ServiceURL) == "":
		return fmt.Errorf("%w: service url is required", ErrInvalidConfig)
	}
	if _, err := url.ParseRequestURI(c.ServiceURL); err != nil {
		return fmt.Errorf("%w: service url: %v", ErrInvalidConfig, err)
	}
	if c.ResponseURL != "" {
		if _, err := url.ParseRequestURI(c.ResponseURL); err != nil {
			return fmt.Errorf("%w: response url: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c Config) version() string {
	if v := strings.TrimSpace(c.Version); v != "" {
		return v
	}
	return DefaultVersion
}
