package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hpp_checkout/internal/usecase/interfaces"
)

func TestTranslateStoreError(t *testing.T) {
	cases := []struct {
		in        error
		want      error
		retryable bool
	}{
		{context.DeadlineExceeded, ErrUpstreamTimeout, true},
		{fmt.Errorf("get: %w", interfaces.ErrStoreTimeout), ErrUpstreamTimeout, true},
		{interfaces.ErrStoreUnavailable, ErrUpstreamUnavailable, true},
		{errors.New("connection reset"), ErrUpstreamUnavailable, true},
		{interfaces.ErrStoreAuth, ErrRecordStoreAuth, false},
		{interfaces.ErrRecordAmbiguous, ErrAmbiguousPaymentRecord, false},
		{fmt.Errorf("%w: status 400", interfaces.ErrStoreRejected), ErrRecordStoreRejected, false},
	}
	for _, tc := range cases {
		got := translateStoreError(tc.in)
		if !errors.Is(got, tc.want) {
			t.Fatalf("translateStoreError(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if IsRetryable(got) != tc.retryable {
			t.Fatalf("IsRetryable(%v) = %v", got, !tc.retryable)
		}
	}
}

func TestTranslateGatewayError(t *testing.T) {
	if err := translateGatewayError(context.DeadlineExceeded, ErrGatewayRequestInvalid); !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
	err := translateGatewayError(errors.New("bad hash"), ErrGatewayResponseInvalid)
	if !errors.Is(err, ErrGatewayResponseInvalid) || IsRetryable(err) {
		t.Fatalf("expected non-retryable ErrGatewayResponseInvalid, got %v", err)
	}
}

func TestResultLabel(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrUpstreamTimeout, "timeout"},
		{ErrRecordStoreAuth, "store_auth"},
		{ErrRecordStoreRejected, "store_rejected"},
		{ErrGatewayResponseInvalid, "gateway_error"},
		{fmt.Errorf("%w: %w", ErrPaymentRecordNotFound, ErrIntegrityHazard), "integrity_hazard"},
		{ErrPaymentAlreadyReconciled, "already_reconciled"},
		{ErrProductNotFound, "not_found"},
		{ErrAmbiguousPaymentRecord, "ambiguous"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := resultLabel(tc.err); got != tc.want {
			t.Fatalf("resultLabel(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
