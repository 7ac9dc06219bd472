package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/infrastructure/dataverse"
	"hpp_checkout/internal/infrastructure/payments/hpp"
)

const (
	RecordStoreDynamoDB  = "dynamodb"
	RecordStoreDataverse = "dataverse"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete service configuration, read once at startup and
// injected into every component. Nothing below reads the environment again.
type Config struct {
	Port     int
	LogLevel string

	Gateway         hpp.Config
	ResponseEncoded bool

	Checkout Checkout

	RecordStore string
	DynamoDB    DynamoDB
	Dataverse   dataverse.Config
	Redis       Redis

	CallTimeout    time.Duration
	JaegerEndpoint string
}

type Checkout struct {
	Currency       string
	ReturnURL      string
	BillingAddress entities.Address
	Customer       entities.CustomerData
}

// DynamoDB configuration. AWS credentials are resolved by the SDK
// (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY, profiles, instance roles).
type DynamoDB struct {
	Region              string
	Endpoint            string
	ProductsTable       string
	PaymentRecordsTable string
}

type Redis struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// Supported env vars:
//   - PORT (default: 8080), LOG_LEVEL (default: info)
//   - HPP_MERCHANT_ID, HPP_ACCOUNT_ID, HPP_SHARED_SECRET, HPP_SERVICE_URL,
//     HPP_VERSION (default: 2), HPP_RESPONSE_URL, HPP_RESPONSE_ENCODED (default: true)
//   - CHECKOUT_CURRENCY (default: EUR), CHECKOUT_RETURN_URL,
//     CHECKOUT_BILLING_STREET1..3, CHECKOUT_BILLING_CITY, CHECKOUT_BILLING_POSTAL_CODE,
//     CHECKOUT_BILLING_COUNTRY, CHECKOUT_CUSTOMER_EMAIL, CHECKOUT_CUSTOMER_PHONE_MOBILE
//   - RECORD_STORE (dynamodb|dataverse, default: dynamodb)
//   - AWS_REGION (default: us-east-1), DYNAMODB_ENDPOINT, PRODUCTS_TABLE, PAYMENT_RECORDS_TABLE
//   - DATAVERSE_TENANT_URL, DATAVERSE_SERVICE_URL, DATAVERSE_CLIENT_ID, DATAVERSE_CLIENT_SECRET
//   - REDIS_ADDR (optional), REDIS_PASSWORD, PRODUCT_CACHE_TTL (default: 1m)
//   - EXTERNAL_CALL_TIMEOUT (default: 10s), OTEL_EXPORTER_JAEGER_ENDPOINT
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error

	port, err := strconv.Atoi(env("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: invalid value %q", getenv("PORT")))
	}
	encoded, err := strconv.ParseBool(env("HPP_RESPONSE_ENCODED", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("HPP_RESPONSE_ENCODED: %w", err))
	}
	callTimeout, err := time.ParseDuration(env("EXTERNAL_CALL_TIMEOUT", "10s"))
	if err != nil || callTimeout <= 0 {
		errs = append(errs, fmt.Errorf("EXTERNAL_CALL_TIMEOUT: invalid value %q", getenv("EXTERNAL_CALL_TIMEOUT")))
	}
	cacheTTL, err := time.ParseDuration(env("PRODUCT_CACHE_TTL", "1m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PRODUCT_CACHE_TTL: %w", err))
	}

	cfg := Config{
		Port:     port,
		LogLevel: env("LOG_LEVEL", "info"),
		Gateway: hpp.Config{
			MerchantID:   env("HPP_MERCHANT_ID", ""),
			AccountID:    env("HPP_ACCOUNT_ID", ""),
			SharedSecret: getenv("HPP_SHARED_SECRET"),
			ServiceURL:   env("HPP_SERVICE_URL", hpp.SandboxServiceURL),
			Version:      env("HPP_VERSION", hpp.DefaultVersion),
			ResponseURL:  env("HPP_RESPONSE_URL", ""),
		},
		ResponseEncoded: encoded,
		Checkout: Checkout{
			Currency:  strings.ToUpper(env("CHECKOUT_CURRENCY", "EUR")),
			ReturnURL: env("CHECKOUT_RETURN_URL", ""),
			BillingAddress: entities.Address{
				StreetAddress1: env("CHECKOUT_BILLING_STREET1", ""),
				StreetAddress2: env("CHECKOUT_BILLING_STREET2", ""),
				StreetAddress3: env("CHECKOUT_BILLING_STREET3", ""),
				City:           env("CHECKOUT_BILLING_CITY", ""),
				PostalCode:     env("CHECKOUT_BILLING_POSTAL_CODE", ""),
				Country:        env("CHECKOUT_BILLING_COUNTRY", ""),
			},
			Customer: entities.CustomerData{
				Email:       env("CHECKOUT_CUSTOMER_EMAIL", ""),
				PhoneMobile: env("CHECKOUT_CUSTOMER_PHONE_MOBILE", ""),
			},
		},
		RecordStore: strings.ToLower(env("RECORD_STORE", RecordStoreDynamoDB)),
		DynamoDB: DynamoDB{
			Region:              env("AWS_REGION", "us-east-1"),
			Endpoint:            env("DYNAMODB_ENDPOINT", ""),
			ProductsTable:       env("PRODUCTS_TABLE", ""),
			PaymentRecordsTable: env("PAYMENT_RECORDS_TABLE", ""),
		},
		Dataverse: dataverse.Config{
			TenantURL:    env("DATAVERSE_TENANT_URL", ""),
			ServiceURL:   env("DATAVERSE_SERVICE_URL", ""),
			ClientID:     env("DATAVERSE_CLIENT_ID", ""),
			ClientSecret: getenv("DATAVERSE_CLIENT_SECRET"),
			Timeout:      callTimeout,
		},
		Redis: Redis{
			Addr:     env("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD"),
			TTL:      cacheTTL,
		},
		CallTimeout:    callTimeout,
		JaegerEndpoint: env("OTEL_EXPORTER_JAEGER_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return cfg, nil
}

// Validate checks the options required by the selected record store and the
// checkout flow. Address and customer fields are validated by the gateway
// when a session is built.
func (c Config) Validate() error {
	var errs []error
	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, err)
	}
	if u, err := url.Parse(c.Checkout.ReturnURL); err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		errs = append(errs, errors.New("CHECKOUT_RETURN_URL must be an absolute http(s) url"))
	}
	if len(c.Checkout.Currency) != 3 {
		errs = append(errs, fmt.Errorf("CHECKOUT_CURRENCY: invalid value %q", c.Checkout.Currency))
	}

	switch c.RecordStore {
	case RecordStoreDynamoDB:
	case RecordStoreDataverse:
		if err := c.Dataverse.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("RECORD_STORE: unsupported value %q", c.RecordStore))
	}
	return errors.Join(errs...)
}
