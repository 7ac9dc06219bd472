package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/infrastructure/payments/hpp"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testGatewayConfig() hpp.Config {
	return hpp.Config{
		MerchantID:   "dev123",
		AccountID:    "internet",
		SharedSecret: "secret",
		ServiceURL:   hpp.SandboxServiceURL,
	}
}

func testSessionRequest() entities.HostedSessionRequest {
	return entities.HostedSessionRequest{
		Amount:   decimal.RequireFromString("19.99"),
		Currency: "EUR",
		BillingAddress: entities.Address{
			StreetAddress1: "Flat 123",
			City:           "Halifax",
			PostalCode:     "W5 9HR",
			Country:        "826",
		},
		Customer: entities.CustomerData{Email: "james.mason@example.com", PhoneMobile: "353|08300000000"},
	}
}

func TestNewRealexGateway_InvalidConfig(t *testing.T) {
	_, err := NewRealexGateway(hpp.Config{}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, hpp.ErrInvalidConfig)
}

func TestRealexGateway_CreateSession(t *testing.T) {
	g, err := NewRealexGateway(testGatewayConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	payload, err := g.CreateSession(context.Background(), testSessionRequest())
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, "1999", fields[hpp.FieldAmount])
	assert.Equal(t, "EUR", fields[hpp.FieldCurrency])
	assert.Equal(t, "Flat 123", fields["HPP_BILLING_STREET1"])
	assert.Len(t, fields[hpp.FieldOrderID], 22)
	assert.NotEmpty(t, fields[hpp.FieldHash])
}

func TestRealexGateway_CreateSession_Errors(t *testing.T) {
	g, err := NewRealexGateway(testGatewayConfig(), nil)
	require.NoError(t, err)

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := g.CreateSession(ctx, testSessionRequest())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("sub-cent amount", func(t *testing.T) {
		req := testSessionRequest()
		req.Amount = decimal.RequireFromString("19.995")
		_, err := g.CreateSession(context.Background(), req)
		assert.ErrorIs(t, err, hpp.ErrInvalidAmount)
	})

	t.Run("nil gateway", func(t *testing.T) {
		var nilGateway *RealexGateway
		_, err := nilGateway.CreateSession(context.Background(), testSessionRequest())
		assert.ErrorIs(t, err, ErrRealexGatewayNotConfigured)
	})
}

func TestRealexGateway_ParseResponse(t *testing.T) {
	cfg := testGatewayConfig()
	g, err := NewRealexGateway(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	signer, err := hpp.NewService(cfg)
	require.NoError(t, err)

	values := map[string]string{
		hpp.FieldMerchantID: "dev123",
		hpp.FieldOrderID:    "GTI5Yxb0SumL_TkDMCAxQA",
		hpp.FieldTimestamp:  "20260613110837",
		hpp.FieldResult:     "00",
		hpp.FieldMessage:    "[ test system ] Authorised",
		hpp.FieldPasRef:     "14631546336115597",
		hpp.FieldAuthCode:   "12345",
	}
	values[hpp.FieldHash] = signer.SignResponse(values)

	encoded := map[string]string{}
	for k, v := range values {
		encoded[k] = base64.StdEncoding.EncodeToString([]byte(v))
	}
	raw, err := json.Marshal(encoded)
	require.NoError(t, err)

	result, err := g.ParseResponse(context.Background(), string(raw), true)
	require.NoError(t, err)
	assert.Equal(t, "GTI5Yxb0SumL_TkDMCAxQA", result.OrderID)
	assert.Equal(t, "00", result.ResponseCode)
	assert.True(t, result.Approved())
	assert.Equal(t, "14631546336115597", result.PasRef)
	assert.Equal(t, "12345", result.AuthCode)
	assert.Equal(t, "[ test system ] Authorised", result.ResponseMessage)

	encoded[hpp.FieldAuthCode] = base64.StdEncoding.EncodeToString([]byte("99999"))
	raw, _ = json.Marshal(encoded)
	_, err = g.ParseResponse(context.Background(), string(raw), true)
	assert.ErrorIs(t, err, hpp.ErrInvalidSignature)
}
