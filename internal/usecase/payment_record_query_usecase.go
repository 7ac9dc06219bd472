package usecase

import (
	"context"
	"strings"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/usecase/interfaces"
)

// IPaymentRecordQueryUseCase exposes read access to payment records, e.g. for
// support staff checking whether a gateway response arrived.

type IPaymentRecordQueryUseCase interface {
	GetByOrderID(ctx context.Context, orderID string) (entities.PaymentRecord, error)
}

type PaymentRecordQueryUseCase struct {
	records     interfaces.IPaymentRecordRepository
	callTimeout time.Duration
}

var _ IPaymentRecordQueryUseCase = (*PaymentRecordQueryUseCase)(nil)

func NewPaymentRecordQueryUseCase(records interfaces.IPaymentRecordRepository, settings CheckoutSettings) *PaymentRecordQueryUseCase {
	return &PaymentRecordQueryUseCase{records: records, callTimeout: settings.callTimeout()}
}

func (u *PaymentRecordQueryUseCase) GetByOrderID(ctx context.Context, orderID string) (entities.PaymentRecord, error) {
	orderID = strings.TrimSpace(orderID)
	if !orderIDPattern.MatchString(orderID) {
		return entities.PaymentRecord{}, ErrInvalidOrderID
	}

	ctx, cancel := context.WithTimeout(ctx, u.callTimeout)
	defer cancel()

	p, err := u.records.GetByOrderID(ctx, orderID)
	if err != nil {
		return entities.PaymentRecord{}, translateStoreError(err)
	}
	if p.ID == "" {
		return entities.PaymentRecord{}, ErrPaymentRecordNotFound
	}
	return p, nil
}
