package repository

import (
	"context"
	"errors"
	"fmt"

	"hpp_checkout/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repositories.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

var dynamoAuthErrorCodes = map[string]struct{}{
	"UnrecognizedClientException":         {},
	"AccessDeniedException":               {},
	"InvalidSignatureException":           {},
	"MissingAuthenticationTokenException": {},
	"ExpiredTokenException":               {},
	"IncompleteSignature":                 {},
}

// classifyDynamoError wraps a DynamoDB failure into one of the record store
// error classes.
func classifyDynamoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", interfaces.ErrStoreTimeout, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := dynamoAuthErrorCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %v", interfaces.ErrStoreAuth, err)
		}
	}
	return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
}

func tableNameOrDefault(name, def string) string {
	if name != "" {
		return name
	}
	return def
}
