package entities

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidPaymentTransition = errors.New("invalid payment status transition")

// PaymentStatus is the lifecycle stage of a PaymentRecord.
//
// The only legal transition is pending -> reconciled.

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusReconciled PaymentStatus = "reconciled"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusReconciled
}

// PaymentRecord correlates a hosted payment session with its asynchronous
// gateway result.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (order_id-index): order_id
//
// OrderID, ProductID and ReturnURL are written once at session creation.
// The response fields are written once at reconciliation.

type PaymentRecord struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"order_id"`
	ProductID string        `json:"product_id"`
	ReturnURL string        `json:"return_url"`
	Status    PaymentStatus `json:"status"`

	ResponseCode    string `json:"response_code,omitempty"`
	ResponseMessage string `json:"response_message,omitempty"`
	PasRef          string `json:"pas_ref,omitempty"`
	AuthCode        string `json:"auth_code,omitempty"`

	CreatedAt    time.Time `json:"created_at"`
	ReconciledAt time.Time `json:"reconciled_at,omitempty"`

	// Version is the store's concurrency token (e.g. an OData etag). Opaque
	// outside the repository that set it.
	Version string `json:"-"`
}

// NewPendingPaymentRecord builds the record persisted when a session is initiated.
func NewPendingPaymentRecord(id, orderID, productID, returnURL string, now time.Time) PaymentRecord {
	return PaymentRecord{
		ID:        id,
		OrderID:   orderID,
		ProductID: productID,
		ReturnURL: returnURL,
		Status:    PaymentStatusPending,
		CreatedAt: now.UTC(),
	}
}

func (p PaymentRecord) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// Reconcile applies a verified gateway result. It returns a copy; the
// receiver is left untouched when the transition is rejected.
func (p PaymentRecord) Reconcile(result GatewayResult, now time.Time) (PaymentRecord, error) {
	if !p.IsPending() {
		return p, ErrInvalidPaymentTransition
	}
	if strings.TrimSpace(result.OrderID) != p.OrderID {
		return p, ErrInvalidPaymentTransition
	}

	out := p
	out.Status = PaymentStatusReconciled
	out.ResponseCode = result.ResponseCode
	out.ResponseMessage = result.ResponseMessage
	out.PasRef = result.PasRef
	out.AuthCode = result.AuthCode
	out.ReconciledAt = now.UTC()
	return out, nil
}
