package usecase

import (
	"context"
	"errors"
	"testing"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/usecase/interfaces"
	mock_interfaces "hpp_checkout/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestPaymentRecordQueryUseCase_GetByOrderID(t *testing.T) {
	t.Run("invalid order id", func(t *testing.T) {
		uc := NewPaymentRecordQueryUseCase(nil, testSettings())
		for _, id := range []string{"", "  ", "ORD 1", "ORD/1"} {
			if _, err := uc.GetByOrderID(context.Background(), id); !errors.Is(err, ErrInvalidOrderID) {
				t.Fatalf("%q: expected ErrInvalidOrderID, got %v", id, err)
			}
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPaymentRecordRepository(ctrl)
		uc := NewPaymentRecordQueryUseCase(repo, testSettings())

		repo.EXPECT().GetByOrderID(gomock.Any(), "ORD-1").Return(entities.PaymentRecord{}, nil)

		if _, err := uc.GetByOrderID(context.Background(), "ORD-1"); !errors.Is(err, ErrPaymentRecordNotFound) {
			t.Fatalf("expected ErrPaymentRecordNotFound, got %v", err)
		}
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPaymentRecordRepository(ctrl)
		uc := NewPaymentRecordQueryUseCase(repo, testSettings())

		repo.EXPECT().GetByOrderID(gomock.Any(), "ORD-1").Return(entities.PaymentRecord{}, interfaces.ErrRecordAmbiguous)

		if _, err := uc.GetByOrderID(context.Background(), "ORD-1"); !errors.Is(err, ErrAmbiguousPaymentRecord) {
			t.Fatalf("expected ErrAmbiguousPaymentRecord, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_interfaces.NewMockIPaymentRecordRepository(ctrl)
		uc := NewPaymentRecordQueryUseCase(repo, testSettings())

		repo.EXPECT().GetByOrderID(gomock.Any(), "ORD-1").Return(pendingRecord(), nil)

		got, err := uc.GetByOrderID(context.Background(), " ORD-1 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "pay-1" || !got.IsPending() {
			t.Fatalf("unexpected record: %+v", got)
		}
	})
}
