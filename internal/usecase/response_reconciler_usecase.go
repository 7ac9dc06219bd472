package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/infrastructure/observability"
	"hpp_checkout/internal/usecase/interfaces"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RedirectTarget is where the payer is sent once the gateway result has been
// applied to its PaymentRecord.
type RedirectTarget struct {
	URL    string
	Record entities.PaymentRecord
}

// IResponseReconcilerUseCase applies the gateway's posted result to the
// PaymentRecord created by the session initiator.
//
// Steps:
//   - authenticate the payload (shared secret); nothing is read or written on failure
//   - find the unique record by order id and check its return url
//   - move it from pending to reconciled
//   - return the record's stored return url

type IResponseReconcilerUseCase interface {
	ReconcileResponse(ctx context.Context, rawPayload string) (RedirectTarget, error)
}

type ResponseReconcilerUseCase struct {
	records  interfaces.IPaymentRecordRepository
	gateway  interfaces.IPaymentGateway
	settings CheckoutSettings
	logger   *zap.Logger

	now func() time.Time
}

var _ IResponseReconcilerUseCase = (*ResponseReconcilerUseCase)(nil)

func NewResponseReconcilerUseCase(
	records interfaces.IPaymentRecordRepository,
	gateway interfaces.IPaymentGateway,
	settings CheckoutSettings,
	logger *zap.Logger,
) *ResponseReconcilerUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseReconcilerUseCase{
		records:  records,
		gateway:  gateway,
		settings: settings,
		logger:   logger.Named("response_reconciler"),
		now:      time.Now,
	}
}

func (u *ResponseReconcilerUseCase) ReconcileResponse(ctx context.Context, rawPayload string) (RedirectTarget, error) {
	ctx, span := tracer.Start(ctx, "ReconcileResponse")
	defer span.End()

	target, err := u.reconcile(ctx, rawPayload)
	if err != nil {
		span.RecordError(err)
		observability.RecordResponseReconciled(resultLabel(err))
		return RedirectTarget{}, err
	}
	span.SetAttributes(attribute.String("hpp.order_id", target.Record.OrderID))
	observability.RecordResponseReconciled("ok")
	return target, nil
}

func (u *ResponseReconcilerUseCase) reconcile(ctx context.Context, rawPayload string) (RedirectTarget, error) {
	u.logger.Info("reconcile start", zap.Int("payload_len", len(rawPayload)))
	if strings.TrimSpace(rawPayload) == "" {
		u.logger.Warn("empty gateway response", zap.String("event", "gateway_verification_failed"))
		return RedirectTarget{}, fmt.Errorf("%w: empty payload", ErrGatewayResponseInvalid)
	}
	if u.records == nil || u.gateway == nil {
		u.logger.Error("response reconciler not configured")
		return RedirectTarget{}, errors.New("response reconciler not configured")
	}

	result, err := u.verify(ctx, rawPayload)
	if err != nil {
		// Security relevant: never log the payload itself.
		u.logger.Warn("gateway response rejected",
			zap.String("event", "gateway_verification_failed"),
			zap.Error(err),
		)
		return RedirectTarget{}, err
	}

	log := u.logger.With(
		zap.String("order_id", result.OrderID),
		zap.String("response_code", result.ResponseCode),
	)
	log.Info("gateway response verified", zap.Bool("approved", result.Approved()))

	record, err := u.lookup(ctx, result.OrderID)
	if err != nil {
		if errors.Is(err, ErrIntegrityHazard) {
			observability.RecordOrphanedResponse()
			log.Error("authentic gateway response without payment record",
				zap.String("event", "orphaned_gateway_response"),
			)
		} else {
			log.Warn("payment record lookup failed", zap.Error(err))
		}
		return RedirectTarget{}, err
	}
	log = log.With(zap.String("payment_id", record.ID))

	// Checked before the update so an unusable url leaves the record pending.
	if !validReturnURL(record.ReturnURL) {
		log.Error("payment record return url unusable", zap.String("event", "invalid_return_url"))
		return RedirectTarget{}, fmt.Errorf("%w: %w", ErrIntegrityHazard, ErrInvalidReturnURL)
	}

	reconciled, err := record.Reconcile(result, u.now())
	if err != nil {
		log.Warn("payment record already reconciled", zap.String("status", string(record.Status)))
		return RedirectTarget{}, ErrPaymentAlreadyReconciled
	}

	updated, err := u.apply(ctx, reconciled)
	if err != nil {
		log.Warn("payment record update failed", zap.Error(err))
		return RedirectTarget{}, err
	}

	log.Info("reconcile success")
	return RedirectTarget{URL: updated.ReturnURL, Record: updated}, nil
}

func (u *ResponseReconcilerUseCase) verify(ctx context.Context, rawPayload string) (entities.GatewayResult, error) {
	ctx, cancel := context.WithTimeout(ctx, u.settings.callTimeout())
	defer cancel()

	result, err := u.gateway.ParseResponse(ctx, rawPayload, u.settings.ResponseEncoded)
	if err != nil {
		return entities.GatewayResult{}, translateGatewayError(err, ErrGatewayResponseInvalid)
	}
	if !orderIDPattern.MatchString(result.OrderID) {
		return entities.GatewayResult{}, fmt.Errorf("%w: malformed order id", ErrGatewayResponseInvalid)
	}
	return result, nil
}

func (u *ResponseReconcilerUseCase) lookup(ctx context.Context, orderID string) (entities.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, u.settings.callTimeout())
	defer cancel()

	record, err := u.records.GetByOrderID(ctx, orderID)
	if err != nil {
		return entities.PaymentRecord{}, translateStoreError(err)
	}
	if record.ID == "" {
		// The response passed signature verification, so the gateway saw a
		// session this service never recorded.
		return entities.PaymentRecord{}, fmt.Errorf("%w: %w", ErrPaymentRecordNotFound, ErrIntegrityHazard)
	}
	if record.OrderID != orderID {
		return entities.PaymentRecord{}, fmt.Errorf("%w: store returned order %q", ErrAmbiguousPaymentRecord, record.OrderID)
	}
	return record, nil
}

func (u *ResponseReconcilerUseCase) apply(ctx context.Context, record entities.PaymentRecord) (entities.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, u.settings.callTimeout())
	defer cancel()

	updated, err := u.records.MarkReconciled(ctx, record)
	if err != nil {
		return entities.PaymentRecord{}, translateStoreError(err)
	}
	if updated.ID == "" {
		// Condition failed: a concurrent reconcile won the race.
		return entities.PaymentRecord{}, ErrPaymentAlreadyReconciled
	}
	return updated, nil
}

func validReturnURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
