package usecase

import (
	"context"
	"errors"
	"fmt"

	"hpp_checkout/internal/usecase/interfaces"
)

// Upstream-data errors: caused by the caller or by the data held in the stores.
var (
	ErrInvalidProductID         = errors.New("invalid product id")
	ErrInvalidOrderID           = errors.New("invalid order id")
	ErrProductNotFound          = errors.New("product not found")
	ErrPaymentRecordNotFound    = errors.New("payment record not found")
	ErrAmbiguousPaymentRecord   = errors.New("more than one payment record for order id")
	ErrPaymentAlreadyReconciled = errors.New("payment record already reconciled")
)

// Gateway-protocol errors.
var (
	ErrGatewayRequestInvalid  = errors.New("gateway session request invalid")
	ErrGatewayResponseInvalid = errors.New("gateway response failed verification")
)

// Transport errors. Both are safe for the caller to retry.
var (
	ErrUpstreamTimeout     = errors.New("upstream call timed out")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

var (
	ErrRecordStoreAuth     = errors.New("record store authentication failed")
	ErrRecordStoreRejected = errors.New("record store rejected the request")
)

// ErrIntegrityHazard marks states the checkout flow should never reach, such as
// an authentic gateway response with no matching payment record.
var (
	ErrIntegrityHazard  = errors.New("payment integrity hazard")
	ErrInvalidReturnURL = errors.New("payment record has an invalid return url")
)

// IsRetryable reports whether err is a transport failure the caller may retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, ErrUpstreamUnavailable)
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, interfaces.ErrStoreTimeout):
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	case errors.Is(err, interfaces.ErrStoreAuth):
		return fmt.Errorf("%w: %v", ErrRecordStoreAuth, err)
	case errors.Is(err, interfaces.ErrRecordAmbiguous):
		return fmt.Errorf("%w: %v", ErrAmbiguousPaymentRecord, err)
	case errors.Is(err, interfaces.ErrStoreRejected):
		return fmt.Errorf("%w: %v", ErrRecordStoreRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
}

func translateGatewayError(err error, kind error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}
