package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopbot/miniapp-shop/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	ListCategories(ctx context.Context) ([]models.CategorySummary, error)
}

// Prices are stored as numeric(10,2).
var maxPrice = decimal.New(1, 8)

// ValidationError reports a product submission that was rejected before
// reaching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewProduct is an admin submission. An empty Category becomes
// models.DefaultCategory.
type NewProduct struct {
	Name        string
	Price       decimal.Decimal
	PhotoRef    string
	Category    string
	Description string
}

type Service struct {
	store ProductStore
	log   *zap.Logger
}

func NewService(store ProductStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) AddProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if in.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "must not be negative"}
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return nil, &ValidationError{Field: "price", Message: "must have at most two decimal places"}
	}
	if in.Price.GreaterThanOrEqual(maxPrice) {
		return nil, &ValidationError{Field: "price", Message: "must be less than " + maxPrice.String()}
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	p := &models.Product{
		Name:        name,
		Price:       in.Price,
		PhotoRef:    strings.TrimSpace(in.PhotoRef),
		Category:    category,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Info("product added",
		zap.Uint("id", p.ID),
		zap.String("name", p.Name),
		zap.String("price", p.Price.String()),
		zap.String("category", p.Category),
	)
	return p, nil
}

// DeleteProduct removes a product. Unknown IDs are ignored.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	s.log.Info("product deleted", zap.Uint("id", id))
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.CategorySummary, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []models.CategorySummary{}
	}
	return categories, nil
}
