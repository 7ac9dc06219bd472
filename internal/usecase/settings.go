package usecase

import (
	"time"

	"hpp_checkout/internal/domain/entities"
)

const defaultCallTimeout = 10 * time.Second

// CheckoutSettings is the static checkout configuration injected into the
// session initiator and the response reconciler.
type CheckoutSettings struct {
	Currency        string
	ReturnURL       string
	BillingAddress  entities.Address
	Customer        entities.CustomerData
	ResponseEncoded bool
	// CallTimeout bounds every call to an external collaborator.
	CallTimeout time.Duration
}

func (s CheckoutSettings) callTimeout() time.Duration {
	if s.CallTimeout <= 0 {
		return defaultCallTimeout
	}
	return s.CallTimeout
}
