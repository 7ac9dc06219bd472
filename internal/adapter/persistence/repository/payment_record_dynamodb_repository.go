package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentRecordsTableName = "payment_records"
	paymentRecordsOrderIDIndex     = "order_id-index"
)

type paymentRecordItem struct {
	ID              string `dynamodbav:"id"`
	OrderID         string `dynamodbav:"order_id"`
	ProductID       string `dynamodbav:"product_id"`
	ReturnURL       string `dynamodbav:"return_url"`
	Status          string `dynamodbav:"status"`
	ResponseCode    string `dynamodbav:"response_code,omitempty"`
	ResponseMessage string `dynamodbav:"response_message,omitempty"`
	PasRef          string `dynamodbav:"pas_ref,omitempty"`
	AuthCode        string `dynamodbav:"auth_code,omitempty"`
	CreatedAt       string `dynamodbav:"created_at"`
	ReconciledAt    string `dynamodbav:"reconciled_at,omitempty"`
}

// PaymentRecordDynamoRepository persists PaymentRecord entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: order_id-index (PK: order_id, projection ALL)
//
// GSI reads are eventually consistent. A response arriving within the index
// propagation delay of its session creation is reported as not found.

type PaymentRecordDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IPaymentRecordRepository = (*PaymentRecordDynamoRepository)(nil)

func NewPaymentRecordDynamoRepository(ddb DynamoDBAPI, tableName string) *PaymentRecordDynamoRepository {
	return &PaymentRecordDynamoRepository{
		ddb:       ddb,
		tableName: tableNameOrDefault(tableName, defaultPaymentRecordsTableName),
	}
}

func (r *PaymentRecordDynamoRepository) Create(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error) {
	av, err := attributevalue.MarshalMap(toPaymentRecordItem(p))
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.PaymentRecord{}, classifyDynamoError(err)
	}
	return p, nil
}

func (r *PaymentRecordDynamoRepository) GetByOrderID(ctx context.Context, orderID string) (entities.PaymentRecord, error) {
	// Two items are enough to tell "unique" from "ambiguous".
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentRecordsOrderIDIndex),
		KeyConditionExpression: aws.String("order_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: orderID},
		},
		Limit: aws.Int32(2),
	})
	if err != nil {
		return entities.PaymentRecord{}, classifyDynamoError(err)
	}

	switch len(out.Items) {
	case 0:
		return entities.PaymentRecord{}, nil
	case 1:
	default:
		return entities.PaymentRecord{}, fmt.Errorf("%w: order_id=%s", interfaces.ErrRecordAmbiguous, orderID)
	}

	return decodePaymentRecordItem(out.Items[0])
}

func (r *PaymentRecordDynamoRepository) MarkReconciled(ctx context.Context, p entities.PaymentRecord) (entities.PaymentRecord, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: p.ID},
		},
		ConditionExpression: aws.String("attribute_exists(#id) AND #order_id = :order_id AND #status = :pending"),
		UpdateExpression: aws.String("SET #status = :status, #response_code = :response_code, " +
			"#response_message = :response_message, #pas_ref = :pas_ref, #auth_code = :auth_code, " +
			"#reconciled_at = :reconciled_at"),
		ExpressionAttributeNames: map[string]string{
			"#id":               "id",
			"#order_id":         "order_id",
			"#status":           "status",
			"#response_code":    "response_code",
			"#response_message": "response_message",
			"#pas_ref":          "pas_ref",
			"#auth_code":        "auth_code",
			"#reconciled_at":    "reconciled_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":order_id":         &types.AttributeValueMemberS{Value: p.OrderID},
			":pending":          &types.AttributeValueMemberS{Value: string(entities.PaymentStatusPending)},
			":status":           &types.AttributeValueMemberS{Value: string(p.Status)},
			":response_code":    &types.AttributeValueMemberS{Value: p.ResponseCode},
			":response_message": &types.AttributeValueMemberS{Value: p.ResponseMessage},
			":pas_ref":          &types.AttributeValueMemberS{Value: p.PasRef},
			":auth_code":        &types.AttributeValueMemberS{Value: p.AuthCode},
			":reconciled_at":    &types.AttributeValueMemberS{Value: formatTime(p.ReconciledAt)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.PaymentRecord{}, nil
		}
		return entities.PaymentRecord{}, classifyDynamoError(err)
	}
	if len(out.Attributes) == 0 {
		return entities.PaymentRecord{}, nil
	}

	return decodePaymentRecordItem(out.Attributes)
}

// paymentRecordAttributes lists every attribute paymentRecordItem maps.
var paymentRecordAttributes = map[string]struct{}{
	"id": {}, "order_id": {}, "product_id": {}, "return_url": {}, "status": {},
	"response_code": {}, "response_message": {}, "pas_ref": {}, "auth_code": {},
	"created_at": {}, "reconciled_at": {},
}

// decodePaymentRecordItem rejects items carrying attributes outside the
// payment record schema instead of silently dropping them.
func decodePaymentRecordItem(av map[string]types.AttributeValue) (entities.PaymentRecord, error) {
	for name := range av {
		if _, ok := paymentRecordAttributes[name]; !ok {
			return entities.PaymentRecord{}, fmt.Errorf("%w: payment record item has unknown attribute %q", interfaces.ErrStoreRejected, name)
		}
	}
	var it paymentRecordItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return entities.PaymentRecord{}, fmt.Errorf("%w: %v", interfaces.ErrStoreRejected, err)
	}
	return fromPaymentRecordItem(it)
}

func toPaymentRecordItem(p entities.PaymentRecord) paymentRecordItem {
	return paymentRecordItem{
		ID:              p.ID,
		OrderID:         p.OrderID,
		ProductID:       p.ProductID,
		ReturnURL:       p.ReturnURL,
		Status:          string(p.Status),
		ResponseCode:    p.ResponseCode,
		ResponseMessage: p.ResponseMessage,
		PasRef:          p.PasRef,
		AuthCode:        p.AuthCode,
		CreatedAt:       formatTime(p.CreatedAt),
		ReconciledAt:    formatTime(p.ReconciledAt),
	}
}

func fromPaymentRecordItem(it paymentRecordItem) (entities.PaymentRecord, error) {
	status := entities.PaymentStatus(it.Status)
	if !status.Valid() {
		return entities.PaymentRecord{}, fmt.Errorf("%w: payment record %s: unknown status %q", interfaces.ErrStoreRejected, it.ID, it.Status)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	reconciledAt, _ := time.Parse(time.RFC3339Nano, it.ReconciledAt)
	return entities.PaymentRecord{
		ID:              it.ID,
		OrderID:         it.OrderID,
		ProductID:       it.ProductID,
		ReturnURL:       it.ReturnURL,
		Status:          status,
		ResponseCode:    it.ResponseCode,
		ResponseMessage: it.ResponseMessage,
		PasRef:          it.PasRef,
		AuthCode:        it.AuthCode,
		CreatedAt:       createdAt,
		ReconciledAt:    reconciledAt,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
