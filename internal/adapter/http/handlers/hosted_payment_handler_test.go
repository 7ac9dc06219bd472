package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"hpp_checkout/internal/adapter/http/handlers/mocks"
	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

type handlerMocks struct {
	initiator  *mocks.MockISessionInitiatorUseCase
	reconciler *mocks.MockIResponseReconcilerUseCase
	query      *mocks.MockIPaymentRecordQueryUseCase
}

func newTestRouter(t *testing.T) (*gin.Engine, handlerMocks) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	m := handlerMocks{
		initiator:  mocks.NewMockISessionInitiatorUseCase(ctrl),
		reconciler: mocks.NewMockIResponseReconcilerUseCase(ctrl),
		query:      mocks.NewMockIPaymentRecordQueryUseCase(ctrl),
	}
	h := NewHostedPaymentHandler(m.initiator, m.reconciler, m.query, nil)

	r := gin.New()
	r.GET("/v1/hpp/request", h.InitiateSession)
	r.POST("/v1/hpp/request", h.InitiateSession)
	r.POST("/v1/hpp/response", h.ReconcileResponse)
	r.GET("/v1/payments/:order_id", h.GetPaymentByOrderID)
	return r, m
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not json: %s", w.Body.String())
	}
	return body
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHostedPaymentHandler_InitiateSession(t *testing.T) {
	payload := json.RawMessage(`{"MERCHANT_ID":"dev","ORDER_ID":"ORD-1","AMOUNT":"1999","CURRENCY":"EUR","SHA1HASH":"abc"}`)

	t.Run("success returns payload verbatim", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.initiator.EXPECT().InitiateSession(gomock.Any(), "P1").Return(usecase.SessionPayload{OrderID: "ORD-1", Payload: payload}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/hpp/request?productId=P1", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if w.Body.String() != string(payload) {
			t.Fatalf("payload altered: %s", w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Fatalf("unexpected content type %q", ct)
		}
	})

	t.Run("post is accepted", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.initiator.EXPECT().InitiateSession(gomock.Any(), "P1").Return(usecase.SessionPayload{OrderID: "ORD-1", Payload: payload}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/hpp/request?productId=P1", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	cases := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"invalid product", usecase.ErrInvalidProductID, http.StatusBadRequest, "INVALID_PRODUCT_ID", false},
		{"product not found", usecase.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", false},
		{"gateway request invalid", fmt.Errorf("%w: bad amount", usecase.ErrGatewayRequestInvalid), http.StatusInternalServerError, "GATEWAY_REQUEST_INVALID", false},
		{"timeout", fmt.Errorf("%w: products", usecase.ErrUpstreamTimeout), http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", true},
		{"unavailable", fmt.Errorf("%w: records", usecase.ErrUpstreamUnavailable), http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", true},
		{"store auth", fmt.Errorf("%w: token", usecase.ErrRecordStoreAuth), http.StatusBadGateway, "RECORD_STORE_AUTH", false},
		{"store rejected", fmt.Errorf("%w: status 400", usecase.ErrRecordStoreRejected), http.StatusInternalServerError, "RECORD_STORE_REJECTED", false},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, m := newTestRouter(t)
			m.initiator.EXPECT().InitiateSession(gomock.Any(), "P1").Return(usecase.SessionPayload{}, tc.err)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/hpp/request?productId=P1", nil))

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			body := decodeError(t, w)
			if body["code"] != tc.code || body["retryable"] != tc.retryable {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}

	t.Run("missing product id is passed through for validation", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.initiator.EXPECT().InitiateSession(gomock.Any(), "").Return(usecase.SessionPayload{}, usecase.ErrInvalidProductID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/hpp/request", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestHostedPaymentHandler_ReconcileResponse(t *testing.T) {
	raw := `{"ORDER_ID":"T1JELTE=","RESULT":"MDA=","SHA1HASH":"x"}`

	t.Run("success redirects to return url", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.reconciler.EXPECT().ReconcileResponse(gomock.Any(), raw).Return(usecase.RedirectTarget{
			URL:    "https://shop.example/thanks",
			Record: entities.PaymentRecord{ID: "pay-1", OrderID: "ORD-1", Status: entities.PaymentStatusReconciled},
		}, nil)

		w := postForm(r, "/v1/hpp/response", url.Values{"hppResponse": {raw}})

		if w.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "https://shop.example/thanks" {
			t.Fatalf("unexpected location %q", loc)
		}
	})

	t.Run("missing form field", func(t *testing.T) {
		r, _ := newTestRouter(t)

		w := postForm(r, "/v1/hpp/response", url.Values{"other": {"x"}})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("verification failure is generic", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.reconciler.EXPECT().ReconcileResponse(gomock.Any(), raw).
			Return(usecase.RedirectTarget{}, fmt.Errorf("%w: signature mismatch", usecase.ErrGatewayResponseInvalid))

		w := postForm(r, "/v1/hpp/response", url.Values{"hppResponse": {raw}})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if strings.Contains(w.Body.String(), "signature") {
			t.Fatalf("verification detail leaked: %s", w.Body.String())
		}
		if w.Header().Get("Location") != "" {
			t.Fatalf("must not redirect on failure")
		}
	})

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"orphaned response", fmt.Errorf("%w: %w", usecase.ErrPaymentRecordNotFound, usecase.ErrIntegrityHazard), http.StatusNotFound, "PAYMENT_NOT_FOUND"},
		{"ambiguous", usecase.ErrAmbiguousPaymentRecord, http.StatusConflict, "PAYMENT_AMBIGUOUS"},
		{"already reconciled", usecase.ErrPaymentAlreadyReconciled, http.StatusConflict, "PAYMENT_ALREADY_RECONCILED"},
		{"invalid return url", fmt.Errorf("%w: %w", usecase.ErrIntegrityHazard, usecase.ErrInvalidReturnURL), http.StatusInternalServerError, "INVALID_RETURN_URL"},
		{"timeout", usecase.ErrUpstreamTimeout, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"store rejected", usecase.ErrRecordStoreRejected, http.StatusInternalServerError, "RECORD_STORE_REJECTED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, m := newTestRouter(t)
			m.reconciler.EXPECT().ReconcileResponse(gomock.Any(), raw).Return(usecase.RedirectTarget{}, tc.err)

			w := postForm(r, "/v1/hpp/response", url.Values{"hppResponse": {raw}})

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if body := decodeError(t, w); body["code"] != tc.code {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestHostedPaymentHandler_GetPaymentByOrderID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.query.EXPECT().GetByOrderID(gomock.Any(), "ORD-1").Return(entities.PaymentRecord{
			ID:           "pay-1",
			OrderID:      "ORD-1",
			ProductID:    "P1",
			ReturnURL:    "https://shop.example/thanks",
			Status:       entities.PaymentStatusReconciled,
			ResponseCode: "00",
			CreatedAt:    time.Now().UTC(),
		}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/ORD-1", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["payment_id"] != "pay-1" || body["status"] != "reconciled" || body["approved"] != true {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.query.EXPECT().GetByOrderID(gomock.Any(), "ORD-9").Return(entities.PaymentRecord{}, usecase.ErrPaymentRecordNotFound)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/ORD-9", nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("invalid order id", func(t *testing.T) {
		r, m := newTestRouter(t)
		m.query.EXPECT().GetByOrderID(gomock.Any(), "bad$id").Return(entities.PaymentRecord{}, usecase.ErrInvalidOrderID)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/bad$id", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
