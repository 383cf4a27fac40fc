package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// ListProducts returns every product ordered by ID.
func (r *ProductsRepository) ListProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) CreateProduct(ctx context.Context, p *Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// DeleteProduct removes the product with the given ID. Deleting a missing
// product is not an error.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Product{}, id).Error
}

func (r *ProductsRepository) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	categories := []CategorySummary{}
	if err := r.db.WithContext(ctx).
		Model(&Product{}).
		Select("category AS name, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
