package payments

import (
	"context"
	"encoding/json"
	"errors"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/infrastructure/payments/hpp"
	"hpp_checkout/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var ErrRealexGatewayNotConfigured = errors.New("realex gateway not configured")

// RealexGateway serves the hosted payment page protocol of Global Payments
// (Realex). Sessions are built and signed locally; nothing is sent to the
// gateway until the payer's browser posts the payload to the HPP.
type RealexGateway struct {
	service *hpp.Service
	logger  *zap.Logger
}

var _ interfaces.IPaymentGateway = (*RealexGateway)(nil)

func NewRealexGateway(cfg hpp.Config, logger *zap.Logger) (*RealexGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gateway")

	svc, err := hpp.NewService(cfg)
	if err != nil {
		logger.Error("invalid hpp config", zap.Error(err))
		return nil, err
	}
	logger.Info("realex hpp gateway initialized",
		zap.String("merchant_id", cfg.MerchantID),
		zap.String("account_id", cfg.AccountID),
		zap.String("service_url", cfg.ServiceURL),
	)
	return &RealexGateway{service: svc, logger: logger}, nil
}

func (g *RealexGateway) CreateSession(ctx context.Context, req entities.HostedSessionRequest) (json.RawMessage, error) {
	if g == nil || g.service == nil {
		return nil, ErrRealexGatewayNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.logger.Debug("create session start", zap.String("amount", req.Amount.String()), zap.String("currency", req.Currency))

	payload, err := g.service.Charge(req.Amount).
		WithCurrency(req.Currency).
		WithAddress(toHPPAddress(req.BillingAddress), hpp.AddressTypeBilling).
		WithHostedPaymentData(hpp.HostedPaymentData{
			CustomerEmail:       req.Customer.Email,
			CustomerPhoneMobile: req.Customer.PhoneMobile,
		}).
		Serialize()
	if err != nil {
		g.logger.Warn("create session failed", zap.Error(err))
		return nil, err
	}

	g.logger.Debug("create session success", zap.Int("payload_len", len(payload)))
	return payload, nil
}

func (g *RealexGateway) ParseResponse(ctx context.Context, rawPayload string, encoded bool) (entities.GatewayResult, error) {
	if g == nil || g.service == nil {
		return entities.GatewayResult{}, ErrRealexGatewayNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return entities.GatewayResult{}, err
	}

	tx, err := g.service.ParseResponse(rawPayload, encoded)
	if err != nil {
		return entities.GatewayResult{}, err
	}

	return entities.GatewayResult{
		OrderID:         tx.OrderID,
		ResponseCode:    tx.ResponseCode,
		ResponseMessage: tx.ResponseMessage,
		PasRef:          tx.Value(hpp.FieldPasRef),
		AuthCode:        tx.Value(hpp.FieldAuthCode),
		Values:          tx.ResponseValues,
	}, nil
}

func toHPPAddress(a entities.Address) hpp.Address {
	return hpp.Address{
		StreetAddress1: a.StreetAddress1,
		StreetAddress2: a.StreetAddress2,
		StreetAddress3: a.StreetAddress3,
		City:           a.City,
		PostalCode:     a.PostalCode,
		Country:        a.Country,
	}
}
