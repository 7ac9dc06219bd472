package repository

import (
	"context"
	"fmt"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const defaultProductsTableName = "products"

// ProductDynamoRepository reads Product entities from DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - price: number, or a decimal string

type ProductDynamoRepository struct {
	ddb       DynamoDBAPI
	tableName string
}

var _ interfaces.IProductRepository = (*ProductDynamoRepository)(nil)

func NewProductDynamoRepository(ddb DynamoDBAPI, tableName string) *ProductDynamoRepository {
	return &ProductDynamoRepository{
		ddb:       ddb,
		tableName: tableNameOrDefault(tableName, defaultProductsTableName),
	}
}

func (r *ProductDynamoRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ProjectionExpression:     aws.String("#id, #price"),
		ExpressionAttributeNames: map[string]string{"#id": "id", "#price": "price"},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return entities.Product{}, classifyDynamoError(err)
	}
	if len(out.Item) == 0 {
		return entities.Product{}, nil
	}

	price, err := decodePrice(out.Item["price"])
	if err != nil {
		return entities.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	return entities.Product{ID: id, Price: price}, nil
}

func decodePrice(av types.AttributeValue) (decimal.Decimal, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		return decimal.NewFromString(v.Value)
	case *types.AttributeValueMemberS:
		return decimal.NewFromString(v.Value)
	case nil:
		return decimal.Decimal{}, fmt.Errorf("price attribute missing")
	default:
		return decimal.Decimal{}, fmt.Errorf("price attribute has unsupported type %T", av)
	}
}
