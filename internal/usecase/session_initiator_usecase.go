package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/infrastructure/observability"
	"hpp_checkout/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// orderIDField is the payload field carrying the gateway-assigned order id.
const orderIDField = "ORDER_ID"

var orderIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,50}$`)

var tracer = otel.Tracer("hpp_checkout/internal/usecase")

// SessionPayload is the serialized checkout session handed back to the caller,
// who forwards it verbatim to the hosted payment page.
type SessionPayload struct {
	OrderID string
	Payload json.RawMessage
}

// ISessionInitiatorUseCase starts a hosted payment session for a product.
//
// The pending PaymentRecord is persisted before the payload is returned, so a
// payload is never handed out without a record the gateway response can be
// correlated with.

type ISessionInitiatorUseCase interface {
	InitiateSession(ctx context.Context, productID string) (SessionPayload, error)
}

type SessionInitiatorUseCase struct {
	products interfaces.IProductRepository
	records  interfaces.IPaymentRecordRepository
	gateway  interfaces.IPaymentGateway
	settings CheckoutSettings
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

var _ ISessionInitiatorUseCase = (*SessionInitiatorUseCase)(nil)

func NewSessionInitiatorUseCase(
	products interfaces.IProductRepository,
	records interfaces.IPaymentRecordRepository,
	gateway interfaces.IPaymentGateway,
	settings CheckoutSettings,
	logger *zap.Logger,
) *SessionInitiatorUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionInitiatorUseCase{
		products: products,
		records:  records,
		gateway:  gateway,
		settings: settings,
		logger:   logger.Named("session_initiator"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (u *SessionInitiatorUseCase) InitiateSession(ctx context.Context, productID string) (SessionPayload, error) {
	ctx, span := tracer.Start(ctx, "InitiateSession")
	defer span.End()

	out, err := u.initiate(ctx, productID)
	if err != nil {
		span.RecordError(err)
		observability.RecordSessionInitiated(resultLabel(err))
		return SessionPayload{}, err
	}
	span.SetAttributes(attribute.String("hpp.order_id", out.OrderID))
	observability.RecordSessionInitiated("ok")
	return out, nil
}

func (u *SessionInitiatorUseCase) initiate(ctx context.Context, productID string) (SessionPayload, error) {
	productID = strings.TrimSpace(productID)
	log := u.logger.With(zap.String("product_id", productID))
	log.Info("initiate start")
	if productID == "" {
		log.Info("invalid product id (empty)")
		return SessionPayload{}, ErrInvalidProductID
	}
	if u.products == nil || u.records == nil || u.gateway == nil {
		log.Error("session initiator not configured")
		return SessionPayload{}, errors.New("session initiator not configured")
	}

	product, err := u.fetchProduct(ctx, productID)
	if err != nil {
		log.Warn("product lookup failed", zap.Error(err))
		return SessionPayload{}, err
	}
	log.Info("product loaded", zap.String("price", product.Price.String()))

	payload, err := u.buildSession(ctx, product)
	if err != nil {
		log.Warn("session build failed", zap.Error(err))
		return SessionPayload{}, err
	}

	orderID, err := extractOrderID(payload)
	if err != nil {
		log.Error("serialized session has no usable order id", zap.Error(err))
		return SessionPayload{}, err
	}
	log = log.With(zap.String("order_id", orderID))

	record := entities.NewPendingPaymentRecord(u.newID(), orderID, productID, u.settings.ReturnURL, u.now())
	if err := u.persist(ctx, record); err != nil {
		// A payload is never handed out without its record.
		log.Error("payment record create failed; session discarded", zap.Error(err))
		return SessionPayload{}, err
	}

	log.Info("initiate success", zap.String("payment_id", record.ID))
	return SessionPayload{OrderID: orderID, Payload: payload}, nil
}

func (u *SessionInitiatorUseCase) fetchProduct(ctx context.Context, productID string) (entities.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, u.settings.callTimeout())
	defer cancel()

	product, err := u.products.GetByID(ctx, productID)
	if err != nil {
		return entities.Product{}, translateStoreError(err)
	}
	if product.ID == "" {
		return entities.Product{}, ErrProductNotFound
	}
	return product, nil
}

func (u *SessionInitiatorUseCase) buildSession(ctx context.Context, product entities.Product) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, u.settings.callTimeout())
	defer cancel()

	payload, err := u.gateway.CreateSession(ctx, entities.HostedSessionRequest{
		Amount:         product.Price,
		Currency:       u.settings.Currency,
		BillingAddress: u.settings.BillingAddress,
		Customer:       u.settings.Customer,
	})
	if err != nil {
		return nil, translateGatewayError(err, ErrGatewayRequestInvalid)
	}
	return payload, nil
}

func (u *SessionInitiatorUseCase) persist(ctx context.Context, record entities.PaymentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, u.settings.callTimeout())
	defer cancel()

	if _, err := u.records.Create(ctx, record); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func extractOrderID(payload json.RawMessage) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", fmt.Errorf("%w: payload is not a json object", ErrGatewayRequestInvalid)
	}
	raw, ok := fields[orderIDField]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrGatewayRequestInvalid, orderIDField)
	}
	var orderID string
	if err := json.Unmarshal(raw, &orderID); err != nil || !orderIDPattern.MatchString(orderID) {
		return "", fmt.Errorf("%w: malformed %s", ErrGatewayRequestInvalid, orderIDField)
	}
	return orderID, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, ErrRecordStoreAuth):
		return "store_auth"
	case errors.Is(err, ErrRecordStoreRejected):
		return "store_rejected"
	case errors.Is(err, ErrGatewayRequestInvalid), errors.Is(err, ErrGatewayResponseInvalid):
		return "gateway_error"
	case errors.Is(err, ErrIntegrityHazard):
		return "integrity_hazard"
	case errors.Is(err, ErrPaymentAlreadyReconciled):
		return "already_reconciled"
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrPaymentRecordNotFound):
		return "not_found"
	case errors.Is(err, ErrAmbiguousPaymentRecord):
		return "ambiguous"
	default:
		return "error"
	}
}
