package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
	events      notifier
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, broker realtime.Broker, log logrus.FieldLogger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		events:      newNotifier(broker, log),
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name        string
	Category    string
	Quantity    int
	BuyingPrice decimal.Decimal
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, sess *account.Session, input *CreateProductInput) (*entity.Product, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}
	if input.Quantity < 0 {
		return nil, apperror.NewFieldError("quantity", "cannot be negative")
	}
	if input.BuyingPrice.IsNegative() {
		return nil, apperror.NewFieldError("buying_price", "cannot be negative")
	}

	product := &entity.Product{
		UserID:      sess.AccountID,
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Quantity:    input.Quantity,
		BuyingPrice: input.BuyingPrice,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.events.notify(ctx, sess.AccountID, CollectionProducts, realtime.ActionCreated, product.ID)
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, sess *account.Session, id uuid.UUID) (*entity.Product, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	product, err := s.productRepo.GetByID(ctx, sess.AccountID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with search and category filters
func (s *ProductService) ListProducts(ctx context.Context, sess *account.Session, params *pagination.PaginationParams, filter repository.ProductFilter) (*pagination.PaginatedResult[entity.Product], error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	params.Validate()
	products, total, err := s.productRepo.List(ctx, sess.AccountID, params, filter)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Category    *string
	Quantity    *int
	BuyingPrice *decimal.Decimal
}

// UpdateProduct updates a product. Setting Quantity is a stock-count correction;
// without it the stored quantity is left to the ledger.
func (s *ProductService) UpdateProduct(ctx context.Context, sess *account.Session, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, sess, input.ID)
	if err != nil {
		return nil, err
	}

	var columns []string
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "cannot be empty")
		}
		product.Name = name
		columns = append(columns, "name")
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
		columns = append(columns, "category")
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperror.NewFieldError("quantity", "cannot be negative")
		}
		product.Quantity = *input.Quantity
		columns = append(columns, "quantity")
	}
	if input.BuyingPrice != nil {
		if input.BuyingPrice.IsNegative() {
			return nil, apperror.NewFieldError("buying_price", "cannot be negative")
		}
		product.BuyingPrice = *input.BuyingPrice
		columns = append(columns, "buying_price")
	}

	if err := s.productRepo.Update(ctx, product, columns); err != nil {
		return nil, err
	}

	s.events.notify(ctx, sess.AccountID, CollectionProducts, realtime.ActionUpdated, product.ID)
	return product, nil
}

// DeleteProduct soft-deletes a product. Past line items keep their snapshots.
func (s *ProductService) DeleteProduct(ctx context.Context, sess *account.Session, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, sess, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, sess.AccountID, id); err != nil {
		return err
	}

	s.events.notify(ctx, sess.AccountID, CollectionProducts, realtime.ActionDeleted, id)
	return nil
}
