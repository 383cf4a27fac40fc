package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/shopbot/miniapp-shop/models"
)

// --- Mock Store ---

// MockProductStore is an in-memory ProductStore with auto-increment IDs.
type MockProductStore struct {
	mu       sync.Mutex
	products []models.Product
	nextID   uint

	ListErr   error
	CreateErr error
	DeleteErr error
}

func (m *MockProductStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *MockProductStore) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductStore) CreateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.nextID++
	p.ID = m.nextID
	m.products = append(m.products, *p)
	return nil
}

func (m *MockProductStore) DeleteProduct(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockProductStore) ListCategories(ctx context.Context) ([]models.CategorySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, p := range m.products {
		counts[p.Category]++
	}
	out := make([]models.CategorySummary, 0, len(counts))
	for name, count := range counts {
		out = append(out, models.CategorySummary{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
