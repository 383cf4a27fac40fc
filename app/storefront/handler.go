// Package storefront renders the Mini App shop page.
package storefront

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/shopbot/miniapp-shop/models"
	"go.uber.org/zap"
)

//go:embed templates/shop.html
var templateFS embed.FS

var shopTmpl = template.Must(template.ParseFS(templateFS, "templates/shop.html"))

type ProductLister interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Section is one category block on the page.
type Section struct {
	Category string
	Products []models.Product
}

type pageData struct {
	Sections []Section
	Currency string
}

type Handler struct {
	catalog  ProductLister
	currency string
	log      *zap.Logger
}

func NewHandler(catalog ProductLister, currency string, log *zap.Logger) *Handler {
	return &Handler{catalog: catalog, currency: currency, log: log}
}

func (h *Handler) HandleShop(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.log.Error("storefront: list products", zap.Error(err))
		http.Error(w, "the shop is temporarily unavailable", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := shopTmpl.Execute(&buf, pageData{
		Sections: GroupByCategory(products),
		Currency: h.currency,
	}); err != nil {
		h.log.Error("storefront: render", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// GroupByCategory keeps product order within a category and orders
// categories by their first appearance.
func GroupByCategory(products []models.Product) []Section {
	index := map[string]int{}
	var sections []Section
	for _, p := range products {
		category := p.Category
		if category == "" {
			category = models.DefaultCategory
		}
		i, ok := index[category]
		if !ok {
			i = len(sections)
			index[category] = i
			sections = append(sections, Section{Category: category})
		}
		sections[i].Products = append(sections[i].Products, p)
	}
	return sections
}
