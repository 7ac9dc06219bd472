package hpp

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseValues() map[string]string {
	return map[string]string{
		FieldMerchantID: "dev123",
		FieldAccount:    "internet",
		FieldOrderID:    "ORD-1",
		FieldTimestamp:  "20260613110837",
		FieldResult:     "00",
		FieldMessage:    "[ test system ] Authorised",
		FieldPasRef:     "14631546336115597",
		FieldAuthCode:   "12345",
		FieldAmount:     "1999",
	}
}

func encodeResponse(t *testing.T, values map[string]string, encoded bool) string {
	t.Helper()
	out := make(map[string]string, len(values))
	for k, v := range values {
		if encoded {
			v = base64.StdEncoding.EncodeToString([]byte(v))
		}
		out[k] = v
	}
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	return string(raw)
}

func signedValues(svc *Service) map[string]string {
	v := responseValues()
	v[FieldHash] = svc.SignResponse(v)
	return v
}

func TestService_ParseResponse(t *testing.T) {
	svc := newTestService(t)

	t.Run("plain", func(t *testing.T) {
		tx, err := svc.ParseResponse(encodeResponse(t, signedValues(svc), false), false)
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", tx.OrderID)
		assert.Equal(t, "00", tx.ResponseCode)
		assert.Equal(t, "[ test system ] Authorised", tx.ResponseMessage)
		assert.Equal(t, "14631546336115597", tx.Value(FieldPasRef))
		assert.Equal(t, "12345", tx.Value(FieldAuthCode))
		assert.Equal(t, "1999", tx.Value(FieldAmount))
	})

	t.Run("base64 encoded", func(t *testing.T) {
		tx, err := svc.ParseResponse(encodeResponse(t, signedValues(svc), true), true)
		require.NoError(t, err)
		assert.Equal(t, "ORD-1", tx.OrderID)
		assert.Equal(t, "12345", tx.Value(FieldAuthCode))
	})

	t.Run("declined result is still authentic", func(t *testing.T) {
		v := responseValues()
		v[FieldResult] = "101"
		v[FieldMessage] = "Declined"
		v[FieldAuthCode] = ""
		v[FieldHash] = svc.SignResponse(v)

		tx, err := svc.ParseResponse(encodeResponse(t, v, false), false)
		require.NoError(t, err)
		assert.Equal(t, "101", tx.ResponseCode)
	})

	t.Run("uppercase hash accepted", func(t *testing.T) {
		v := signedValues(svc)
		v[FieldHash] = strings.ToUpper(v[FieldHash])
		_, err := svc.ParseResponse(encodeResponse(t, v, false), false)
		assert.NoError(t, err)
	})

	t.Run("numeric json values", func(t *testing.T) {
		v := signedValues(svc)
		raw := `{"MERCHANT_ID":"dev123","ORDER_ID":"ORD-1","TIMESTAMP":"20260613110837","RESULT":"00",` +
			`"MESSAGE":"[ test system ] Authorised","PASREF":"14631546336115597","AUTHCODE":"12345",` +
			`"AMOUNT":1999,"SHA1HASH":"` + v[FieldHash] + `"}`
		tx, err := svc.ParseResponse(raw, false)
		require.NoError(t, err)
		assert.Equal(t, "1999", tx.Value(FieldAmount))
	})
}

func TestService_ParseResponse_Rejects(t *testing.T) {
	svc := newTestService(t)

	t.Run("tampered field", func(t *testing.T) {
		v := signedValues(svc)
		v[FieldAuthCode] = "99999"
		_, err := svc.ParseResponse(encodeResponse(t, v, false), false)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("tampered order id", func(t *testing.T) {
		v := signedValues(svc)
		v[FieldOrderID] = "ORD-2"
		_, err := svc.ParseResponse(encodeResponse(t, v, false), false)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		cfg := testConfig()
		cfg.SharedSecret = "other"
		other, err := NewService(cfg)
		require.NoError(t, err)
		_, err = svc.ParseResponse(encodeResponse(t, signedValues(other), false), false)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("other merchant", func(t *testing.T) {
		v := responseValues()
		v[FieldMerchantID] = "someone-else"
		v[FieldHash] = svc.SignResponse(v)
		_, err := svc.ParseResponse(encodeResponse(t, v, false), false)
		assert.ErrorIs(t, err, ErrMerchantMismatch)
	})

	t.Run("missing hash", func(t *testing.T) {
		_, err := svc.ParseResponse(encodeResponse(t, responseValues(), false), false)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("missing order id", func(t *testing.T) {
		v := signedValues(svc)
		delete(v, FieldOrderID)
		_, err := svc.ParseResponse(encodeResponse(t, v, false), false)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := svc.ParseResponse("hppResponse=abc", false)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("nested value", func(t *testing.T) {
		_, err := svc.ParseResponse(`{"ORDER_ID":{"x":1}}`, false)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("plain payload parsed as encoded", func(t *testing.T) {
		_, err := svc.ParseResponse(encodeResponse(t, signedValues(svc), false), true)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestSignatureMatches(t *testing.T) {
	sig := signature(testSecret, "a", "b")
	assert.True(t, signatureMatches(sig, sig))
	assert.True(t, signatureMatches(sig, " "+sig+" "))
	assert.False(t, signatureMatches(sig, sig[:len(sig)-1]))
	assert.False(t, signatureMatches(sig, ""))
	assert.Equal(t, refSignature(testSecret, "a", "b"), sig)
}
