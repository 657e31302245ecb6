package products

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pdv-commerce/storefront/internal/api"
	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/logger"
)

// ListFilter narrows catalog queries.
type ListFilter struct {
	SellerID int64
	// StorefrontOnly keeps only products whose menu places them in the
	// online storefront.
	StorefrontOnly bool
}

// Service reads the product catalog from the marketplace API.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, productID int64) (Product, error)
	ValidateStock(ctx context.Context, productID int64, wantQty int) error
}

type service struct {
	client *api.Client
	logg   *logger.Logger
}

func NewService(client *api.Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "api client is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{client: client, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := url.Values{}
	if filter.SellerID > 0 {
		query.Set("empresa_id", strconv.FormatInt(filter.SellerID, 10))
	}

	var raw []rawProduct
	if err := s.client.Get(ctx, "/produtos", query, &raw); err != nil {
		return nil, err
	}

	result := make([]Product, 0, len(raw))
	for _, r := range raw {
		product := r.normalize()
		if filter.StorefrontOnly && !product.Menu.VisibleInStorefront() {
			continue
		}
		result = append(result, product)
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, productID int64) (Product, error) {
	if productID <= 0 {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var raw rawProduct
	path := fmt.Sprintf("/produtos/%d", productID)
	if err := s.client.Get(ctx, path, nil, &raw); err != nil {
		return Product{}, err
	}
	return raw.normalize(), nil
}

// ValidateStock checks the live catalog before committing to a
// quantity. The cart itself never clamps; this is the opt-in guard.
func (s *service) ValidateStock(ctx context.Context, productID int64, wantQty int) error {
	if wantQty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if wantQty > product.Quantity {
		err := pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
		return err.WithDetails(map[string]any{
			"product_id": productID,
			"available":  product.Quantity,
			"requested":  wantQty,
		})
	}
	return nil
}
