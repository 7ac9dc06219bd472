package interfaces

import (
	"context"
	"encoding/json"
	"hpp_checkout/internal/domain/entities"
)

// IPaymentGateway abstracts the hosted payment page provider.
//
// CreateSession serializes a signed checkout session. The payload embeds the
// gateway-assigned order id under the ORDER_ID field.
//
// ParseResponse authenticates the result the gateway posts back through the
// payer's browser. Any integrity failure is returned as an error and no
// partial result is produced.
type IPaymentGateway interface {
	CreateSession(ctx context.Context, req entities.HostedSessionRequest) (json.RawMessage, error)
	ParseResponse(ctx context.Context, rawPayload string, encoded bool) (entities.GatewayResult, error)
}
