package interfaces

import (
	"context"
	"hpp_checkout/internal/domain/entities"
)

// IProductRepository abstracts the read-only product store.
//
// GetByID returns a zero-value Product (empty ID) when the product does not exist.

type IProductRepository interface {
	GetByID(ctx context.Context, id string) (entities.Product, error)
}
