package handlers

import (
	"errors"
	"net/http"

	response "hpp_checkout/internal/adapter/http/dto/response"
	"hpp_checkout/internal/adapter/http/middleware"
	"hpp_checkout/internal/usecase"
	"hpp_checkout/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// QueryProductID is the query parameter naming the product to charge for.
	QueryProductID = "productId"
	// FormHPPResponse is the form field the gateway posts its result in.
	FormHPPResponse = "hppResponse"
)

// HostedPaymentHandler serves the hosted payment page endpoints: session
// initiation, the gateway response callback and the payment record lookup.

type HostedPaymentHandler struct {
	initiator  usecase.ISessionInitiatorUseCase
	reconciler usecase.IResponseReconcilerUseCase
	query      usecase.IPaymentRecordQueryUseCase
	logger     *zap.Logger
}

func NewHostedPaymentHandler(
	initiator usecase.ISessionInitiatorUseCase,
	reconciler usecase.IResponseReconcilerUseCase,
	query usecase.IPaymentRecordQueryUseCase,
	logger *zap.Logger,
) *HostedPaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostedPaymentHandler{
		initiator:  initiator,
		reconciler: reconciler,
		query:      query,
		logger:     logger.Named("hpp_handler"),
	}
}

// InitiateSession godoc
// @Summary      Start a hosted payment session
// @Description  Builds a signed HPP request for the product and records a pending payment. The body is the gateway JSON, to be passed unchanged to the payment page library.
// @Tags         hpp
// @Produce      json
// @Param        productId  query     string  true  "Product id"
// @Success      200        {object}  map[string]string
// @Failure      400        {object}  pkg.HTTPError
// @Failure      404        {object}  pkg.HTTPError
// @Failure      500        {object}  pkg.HTTPError
// @Failure      502        {object}  pkg.HTTPError
// @Failure      503        {object}  pkg.HTTPError
// @Failure      504        {object}  pkg.HTTPError
// @Router       /hpp/request [get]
// @Router       /hpp/request [post]
func (h *HostedPaymentHandler) InitiateSession(c *gin.Context) {
	productID := c.Query(QueryProductID)

	session, err := h.initiator.InitiateSession(c.Request.Context(), productID)
	if err != nil {
		h.writeError(c, err, "initiate session failed")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/json; charset=utf-8", session.Payload)
}

// ReconcileResponse godoc
// @Summary      Gateway response callback
// @Description  Verifies the gateway result posted in the hppResponse form field, reconciles the payment record and redirects the payer to its return url.
// @Tags         hpp
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        hppResponse  formData  string  true  "Gateway response JSON"
// @Success      303
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError
// @Failure      500  {object}  pkg.HTTPError
// @Failure      503  {object}  pkg.HTTPError
// @Failure      504  {object}  pkg.HTTPError
// @Router       /hpp/response [post]
func (h *HostedPaymentHandler) ReconcileResponse(c *gin.Context) {
	raw, ok := c.GetPostForm(FormHPPResponse)
	if !ok {
		appErr := pkg.NewDomainErrorSimple("INVALID_REQUEST", "Missing "+FormHPPResponse, http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	target, err := h.reconciler.ReconcileResponse(c.Request.Context(), raw)
	if err != nil {
		h.writeError(c, err, "reconcile response failed")
		return
	}

	c.Redirect(http.StatusSeeOther, target.URL)
}

// GetPaymentByOrderID godoc
// @Summary      Get a payment record
// @Tags         payments
// @Produce      json
// @Param        order_id  path      string  true  "Gateway order id"
// @Success      200       {object}  response.PaymentRecordResponse
// @Failure      400       {object}  pkg.HTTPError
// @Failure      404       {object}  pkg.HTTPError
// @Failure      409       {object}  pkg.HTTPError
// @Router       /payments/{order_id} [get]
func (h *HostedPaymentHandler) GetPaymentByOrderID(c *gin.Context) {
	orderID := c.Param("order_id")

	p, err := h.query.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, err, "get payment failed")
		return
	}

	c.JSON(http.StatusOK, response.FromPaymentRecord(p))
}

func (h *HostedPaymentHandler) writeError(c *gin.Context, err error, msg string) {
	appErr := mapCheckoutError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error(msg,
			zap.String("trace_id", middleware.GetTraceID(c.Request.Context())),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapCheckoutError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidProductID):
		return pkg.NewDomainErrorSimple("INVALID_PRODUCT_ID", "Invalid product id", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidOrderID):
		return pkg.NewDomainErrorSimple("INVALID_ORDER_ID", "Invalid order id", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrProductNotFound):
		return pkg.NewDomainErrorSimple("PRODUCT_NOT_FOUND", "Product not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrPaymentRecordNotFound):
		return pkg.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found", err, http.StatusNotFound)
	case errors.Is(err, usecase.ErrAmbiguousPaymentRecord):
		return pkg.NewDomainError("PAYMENT_AMBIGUOUS", "More than one payment matches the order id", err, http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentAlreadyReconciled):
		return pkg.NewDomainErrorSimple("PAYMENT_ALREADY_RECONCILED", "Payment already reconciled", http.StatusConflict)
	case errors.Is(err, usecase.ErrGatewayResponseInvalid):
		// Verification detail stays in the logs.
		return pkg.NewDomainErrorSimple("INVALID_GATEWAY_RESPONSE", "Invalid gateway response", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrGatewayRequestInvalid):
		return pkg.NewDomainError("GATEWAY_REQUEST_INVALID", "Payment session could not be built", err, http.StatusInternalServerError)
	case errors.Is(err, usecase.ErrUpstreamTimeout):
		return pkg.NewRetryableError("UPSTREAM_TIMEOUT", "Upstream service timed out", err, http.StatusGatewayTimeout)
	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		return pkg.NewRetryableError("UPSTREAM_UNAVAILABLE", "Upstream service unavailable", err, http.StatusServiceUnavailable)
	case errors.Is(err, usecase.ErrRecordStoreAuth):
		return pkg.NewDomainError("RECORD_STORE_AUTH", "Record store authentication failed", err, http.StatusBadGateway)
	case errors.Is(err, usecase.ErrRecordStoreRejected):
		return pkg.NewDomainError("RECORD_STORE_REJECTED", "Record store rejected the request", err, http.StatusInternalServerError)
	case errors.Is(err, usecase.ErrInvalidReturnURL):
		return pkg.NewDomainError("INVALID_RETURN_URL", "Payment has no usable return url", err, http.StatusInternalServerError)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
