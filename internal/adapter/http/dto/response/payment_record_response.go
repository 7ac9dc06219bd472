package response

import (
	"time"

	"hpp_checkout/internal/domain/entities"
)

type PaymentRecordResponse struct {
	PaymentID       string     `json:"payment_id"`
	OrderID         string     `json:"order_id"`
	ProductID       string     `json:"product_id"`
	Status          string     `json:"status"`
	ResponseCode    string     `json:"response_code,omitempty"`
	ResponseMessage string     `json:"response_message,omitempty"`
	PasRef          string     `json:"pas_ref,omitempty"`
	AuthCode        string     `json:"auth_code,omitempty"`
	Approved        bool       `json:"approved"`
	CreatedAt       time.Time  `json:"created_at"`
	ReconciledAt    *time.Time `json:"reconciled_at,omitempty"`
}

// FromPaymentRecord leaves out the return url; it is only used to redirect the payer.
func FromPaymentRecord(p entities.PaymentRecord) PaymentRecordResponse {
	res := PaymentRecordResponse{
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		ProductID:       p.ProductID,
		Status:          string(p.Status),
		ResponseCode:    p.ResponseCode,
		ResponseMessage: p.ResponseMessage,
		PasRef:          p.PasRef,
		AuthCode:        p.AuthCode,
		Approved:        p.Status == entities.PaymentStatusReconciled && p.ResponseCode == entities.ResponseCodeApproved,
		CreatedAt:       p.CreatedAt,
	}
	if !p.ReconciledAt.IsZero() {
		at := p.ReconciledAt
		res.ReconciledAt = &at
	}
	return res
}
