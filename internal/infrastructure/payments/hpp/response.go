package hpp

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedResponse = errors.New("hpp: malformed response")
	ErrInvalidSignature  = errors.New("hpp: response signature mismatch")
	ErrMerchantMismatch  = errors.New("hpp: response is for another merchant")
)

// Transaction is the verified result of a hosted payment.
type Transaction struct {
	OrderID         string
	ResponseCode    string
	ResponseMessage string
	// ResponseValues holds every decoded response field, e.g. PASREF and AUTHCODE.
	ResponseValues map[string]string
}

func (t Transaction) Value(key string) string {
	return t.ResponseValues[key]
}

// ParseResponse decodes and authenticates the JSON posted back by the HPP.
// When encoded is true every value is base64 encoded, which is the default
// for the gateway's client libraries.
func (s *Service) ParseResponse(raw string, encoded bool) (Transaction, error) {
	var generic map[string]any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return Transaction{}, fmt.Errorf("%w: not a json object", ErrMalformedResponse)
	}

	values := make(map[string]string, len(generic))
	for k, v := range generic {
		var str string
		switch tv := v.(type) {
		case string:
			str = tv
		case json.Number:
			str = tv.String()
		case nil:
			str = ""
		default:
			return Transaction{}, fmt.Errorf("%w: field %s is not a scalar", ErrMalformedResponse, k)
		}
		if encoded && str != "" {
			b, err := base64.StdEncoding.DecodeString(str)
			if err != nil {
				return Transaction{}, fmt.Errorf("%w: field %s is not base64", ErrMalformedResponse, k)
			}
			str = string(b)
		}
		values[k] = str
	}

	for _, k := range []string{FieldMerchantID, FieldOrderID, FieldTimestamp, FieldResult, FieldHash} {
		if strings.TrimSpace(values[k]) == "" {
			return Transaction{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, k)
		}
	}

	expected := signature(s.cfg.SharedSecret,
		values[FieldTimestamp],
		values[FieldMerchantID],
		values[FieldOrderID],
		values[FieldResult],
		values[FieldMessage],
		values[FieldPasRef],
		values[FieldAuthCode],
	)
	if !signatureMatches(expected, values[FieldHash]) {
		return Transaction{}, ErrInvalidSignature
	}
	if values[FieldMerchantID] != s.cfg.MerchantID {
		return Transaction{}, ErrMerchantMismatch
	}

	return Transaction{
		OrderID:         values[FieldOrderID],
		ResponseCode:    values[FieldResult],
		ResponseMessage: values[FieldMessage],
		ResponseValues:  values,
	}, nil
}

// SignResponse computes the SHA1HASH the gateway attaches to a response. It
// is used by tests and local tooling to simulate the HPP.
func (s *Service) SignResponse(values map[string]string) string {
	return signature(s.cfg.SharedSecret,
		values[FieldTimestamp],
		values[FieldMerchantID],
		values[FieldOrderID],
		values[FieldResult],
		values[FieldMessage],
		values[FieldPasRef],
		values[FieldAuthCode],
	)
}
