package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/infrastructure/dataverse"
	"hpp_checkout/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dataverse entity sets and columns, as customised for the checkout solution.
const (
	dvProductsEntitySet = "bit365_products"
	dvProductID         = "bit365_productid"
	dvProductPrice      = "bit365_price"

	dvPaymentsEntitySet   = "bit365_payments"
	dvPaymentID           = "bit365_paymentid"
	dvPaymentOrderID      = "bit365_orderid"
	dvPaymentProduct      = "_bit365_product_value"
	dvPaymentProductBind  = "bit365_Product@odata.bind"
	dvPaymentReturnURL    = "bit365_returnurl"
	dvPaymentStatus       = "bit365_status"
	dvPaymentResponseCode = "bit365_responsecode"
	dvPaymentResponseMsg  = "bit365_responsemessage"
	dvPaymentPasRef       = "bit365_pasref"
	dvPaymentAuthCode     = "bit365_authcode"
	dvPaymentCreatedOn    = "createdon"
	dvPaymentReconciledOn = "bit365_reconciledon"
)

// DataverseAPI is the subset of the Dataverse client used by the repositories.
type DataverseAPI interface {
	GetOne(ctx context.Context, entitySet, id string, selectFields []string, out any) error
	List(ctx context.Context, entitySet, filter string, selectFields []string, top int, out any) error
	Create(ctx context.Context, entitySet string, body any) error
	Update(ctx context.Context, entitySet, id, etag string, selectFields []string, body, out any) error
}

var _ DataverseAPI = (*dataverse.Client)(nil)

type dvProduct struct {
	ODataContext          string      `json:"@odata.context,omitempty"`
	ETag                  string      `json:"@odata.etag,omitempty"`
	ID                    string      `json:"bit365_productid"`
	Price                 json.Number `json:"bit365_price"`
	TransactionCurrencyID *string     `json:"_transactioncurrencyid_value,omitempty"`
}

// ProductDataverseRepository reads products from the bit365_products entity set.
//
// Product ids are Dataverse GUIDs; any other id cannot exist and is reported
// as not found without a round trip.

type ProductDataverseRepository struct {
	api DataverseAPI
}

var _ interfaces.IProductRepository = (*ProductDataverseRepository)(nil)

func NewProductDataverseRepository(api DataverseAPI) *ProductDataverseRepository {
	return &ProductDataverseRepository{api: api}
}

func (r *ProductDataverseRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	guid, err := uuid.Parse(id)
	if err != nil {
		return entities.Product{}, nil
	}

	var row dvProduct
	err = r.api.GetOne(ctx, dvProductsEntitySet, guid.String(), []string{dvProductID, dvProductPrice}, &row)
	if errors.Is(err, dataverse.ErrNotFound) {
		return entities.Product{}, nil
	}
	if err != nil {
		return entities.Product{}, err
	}

	price, err := decimal.NewFromString(row.Price.String())
	if err != nil {
		return entities.Product{}, fmt.Errorf("%w: product %s: invalid price %q: %v", interfaces.ErrStoreRejected, guid, row.Price, err)
	}
	return entities.Product{ID: guid.String(), Price: price}, nil
}

type dvPayment struct {
	ETag            string  `json:"@odata.etag,omitempty"`
	ODataContext    string  `json:"@odata.context,omitempty"`
	ID              string  `json:"bit365_paymentid"`
	OrderID         string  `json:"bit365_orderid"`
	ProductID       *string `json:"_bit365_product_value"`
	ReturnURL       *string `json:"bit365_returnurl"`
	Status          *string `json:"bit365_status"`
	ResponseCode    *string `json:"bit365_responsecode"`
	ResponseMessage *string `json:"bit365_responsemessage"`
	PasRef          *string `json:"bit365_pasref"`
	AuthCode        *string `json:"bit365_authcode"`
	CreatedOn       *string `json:"createdon"`
	ReconciledOn    *string `json:"bit365_reconciledon"`
}

type dvPaymentList struct {
	ODataContext string      `json:"@odata.context,omitempty"`
	Value        []dvPayment `json:"value"`
}

var dvPaymentColumns = []string{
	dvPaymentID, dvPaymentOrderID, dvPaymentProduct, dvPaymentReturnURL, dvPaymentStatus,
	dvPaymentResponseCode, dvPaymentResponseMsg, dvPaymentPasRef, dvPaymentAuthCode,
	dvPaymentCreatedOn, dvPaymentReconciledOn,
}

// PaymentRecordDataverseRepository persists PaymentRecords in the
// bit365_payments entity set.
//
// Reconciliation is an optimistic update: the row's etag, carried as the
// record Version, is sent as If-Match so two concurrent reconciles cannot
// both succeed.

type PaymentRecordDataverseRepository struct {
	api DataverseAPI
}

var _ interfaces.IPaymentRecordRepository = (*PaymentRecordDataverseRepository)(nil)

func NewPaymentRecordDataverseRepository(api DataverseAPI) *PaymentRecordDataverseRepository {
	return &PaymentRecordDataverseRepository{api: api}
}

func (r *PaymentRecordDataverseRepository) Create(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error) {
	body := map[string]any{
		dvPaymentID:          p.ID,
		dvPaymentOrderID:     p.OrderID,
		dvPaymentProductBind: fmt.Sprintf("/%s(%s)", dvProductsEntitySet, p.ProductID),
		dvPaymentReturnURL:   p.ReturnURL,
		dvPaymentStatus:      string(p.Status),
	}
	if err := r.api.Create(ctx, dvPaymentsEntitySet, body); err != nil {
		return entities.PaymentRecord{}, err
	}
	return p, nil
}

func (r *PaymentRecordDataverseRepository) GetByOrderID(ctx context.Context, orderID string) (entities.PaymentRecord, error) {
	var list dvPaymentList
	filter := fmt.Sprintf("%s eq %s", dvPaymentOrderID, dataverse.QuoteString(orderID))
	if err := r.api.List(ctx, dvPaymentsEntitySet, filter, dvPaymentColumns, 2, &list); err != nil {
		return entities.PaymentRecord{}, err
	}

	switch len(list.Value) {
	case 0:
		return entities.PaymentRecord{}, nil
	case 1:
	default:
		return entities.PaymentRecord{}, fmt.Errorf("%w: order_id=%s", interfaces.ErrRecordAmbiguous, orderID)
	}
	return fromDVPayment(list.Value[0])
}

func (r *PaymentRecordDataverseRepository) MarkReconciled(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error) {
	if p.Version == "" {
		return entities.PaymentRecord{}, fmt.Errorf("%w: payment record %s has no version (etag)", interfaces.ErrStoreRejected, p.ID)
	}

	body := map[string]any{
		dvPaymentStatus:       string(p.Status),
		dvPaymentResponseCode: p.ResponseCode,
		dvPaymentResponseMsg:  p.ResponseMessage,
		dvPaymentPasRef:       p.PasRef,
		dvPaymentAuthCode:     p.AuthCode,
		dvPaymentReconciledOn: formatTime(p.ReconciledAt),
	}
	var row dvPayment
	err := r.api.Update(ctx, dvPaymentsEntitySet, p.ID, p.Version, dvPaymentColumns, body, &row)
	if errors.Is(err, dataverse.ErrPreconditionFailed) || errors.Is(err, dataverse.ErrNotFound) {
		return entities.PaymentRecord{}, nil
	}
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	return fromDVPayment(row)
}

func fromDVPayment(row dvPayment) (entities.PaymentRecord, error) {
	status := entities.PaymentStatus(deref(row.Status))
	if status == "" {
		status = entities.PaymentStatusPending
	}
	if !status.Valid() {
		return entities.PaymentRecord{}, fmt.Errorf("%w: payment record %s: unknown status %q", interfaces.ErrStoreRejected, row.ID, status)
	}
	createdAt, _ := time.Parse(time.RFC3339, deref(row.CreatedOn))
	reconciledAt, _ := time.Parse(time.RFC3339Nano, deref(row.ReconciledOn))
	return entities.PaymentRecord{
		ID:              row.ID,
		OrderID:         row.OrderID,
		ProductID:       deref(row.ProductID),
		ReturnURL:       deref(row.ReturnURL),
		Status:          status,
		ResponseCode:    deref(row.ResponseCode),
		ResponseMessage: deref(row.ResponseMessage),
		PasRef:          deref(row.PasRef),
		AuthCode:        deref(row.AuthCode),
		CreatedAt:       createdAt,
		ReconciledAt:    reconciledAt,
		Version:         row.ETag,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
