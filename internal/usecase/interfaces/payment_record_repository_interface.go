package interfaces

import (
	"context"
	"hpp_checkout/internal/domain/entities"
)

// IPaymentRecordRepository abstracts the record store holding PaymentRecords.
//
// The store must be able to:
//   - create a pending record when a session is initiated
//   - find the unique record for a gateway order id
//   - apply the reconciled state, only if the record is still pending
//
// Not-found is signalled with a zero-value record (empty ID). More than one
// record for an order id is signalled with ErrRecordAmbiguous.

type IPaymentRecordRepository interface {
	Create(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error)
	GetByOrderID(ctx context.Context, orderID string) (entities.PaymentRecord, error)
	// MarkReconciled returns a zero-value record when the record no longer
	// matches (missing, or already reconciled).
	MarkReconciled(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error)
}
