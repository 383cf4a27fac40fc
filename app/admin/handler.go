// Package admin serves the catalog management pages.
package admin

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopbot/miniapp-shop/app/catalog"
	"github.com/shopbot/miniapp-shop/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	recentOrders  = 20
)

//go:embed templates/admin.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/admin.html"))

type CatalogManager interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	AddProduct(ctx context.Context, in catalog.NewProduct) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type OrderLister interface {
	ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}

type AdminHandler struct {
	catalog  CatalogManager
	orders   OrderLister
	photos   *PhotoStorage
	currency string
	log      *zap.Logger
}

func NewAdminHandler(c CatalogManager, o OrderLister, photos *PhotoStorage, currency string, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:  c,
		orders:   o,
		photos:   photos,
		currency: currency,
		log:      log,
	}
}

type pageData struct {
	Products []models.Product
	Orders   []models.Order
	Currency string
	Default  string
}

func (h *AdminHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.log.Error("admin page: list products", zap.Error(err))
		http.Error(w, "failed to fetch products", http.StatusInternalServerError)
		return
	}
	orders, err := h.orders.ListRecentOrders(r.Context(), recentOrders)
	if err != nil {
		h.log.Error("admin page: list orders", zap.Error(err))
		http.Error(w, "failed to fetch orders", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{
		Products: products,
		Orders:   orders,
		Currency: h.currency,
		Default:  models.DefaultCategory,
	}); err != nil {
		h.log.Error("admin page: render", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandleAdd accepts a urlencoded or multipart form with name, price,
// category, description and photo. photo may be an uploaded file or a URL; photo_url is
// accepted as an alias for the URL.
func (h *AdminHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	priceStr := strings.ReplaceAll(strings.TrimSpace(r.FormValue("price")), ",", ".")
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}

	// photo is either an uploaded file or a URL sent as text.
	photoRef := strings.TrimSpace(r.FormValue("photo"))
	if photoRef == "" {
		photoRef = strings.TrimSpace(r.FormValue("photo_url"))
	}
	uploaded := false
	if r.MultipartForm != nil {
		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
			defer file.Close()
			ref, err := h.photos.Save(file, header.Filename)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			photoRef = ref
			uploaded = true
		case !errors.Is(err, http.ErrMissingFile):
			http.Error(w, "invalid photo upload", http.StatusBadRequest)
			return
		}
	}

	p, err := h.catalog.AddProduct(r.Context(), catalog.NewProduct{
		Name:        r.FormValue("name"),
		Price:       price,
		PhotoRef:    photoRef,
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		if uploaded {
			h.photos.Remove(photoRef)
		}
		var vErr *catalog.ValidationError
		if errors.As(err, &vErr) {
			http.Error(w, vErr.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("admin: add product", zap.Error(err))
		http.Error(w, "failed to add product", http.StatusInternalServerError)
		return
	}

	adminID, _ := AdminFromContext(r.Context())
	h.log.Info("admin added product", zap.Int64("admin_chat_id", adminID), zap.Uint("product_id", p.ID))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var photoRef string
	if p, err := h.catalog.GetProduct(r.Context(), uint(id)); err == nil {
		photoRef = p.PhotoRef
	} else if !errors.Is(err, models.ErrProductNotFound) {
		h.log.Error("admin: get product", zap.Error(err))
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), uint(id)); err != nil {
		h.log.Error("admin: delete product", zap.Error(err))
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}
	if err := h.photos.Remove(photoRef); err != nil {
		h.log.Warn("admin: remove photo", zap.String("photo_ref", photoRef), zap.Error(err))
	}

	adminID, _ := AdminFromContext(r.Context())
	h.log.Info("admin deleted product", zap.Int64("admin_chat_id", adminID), zap.Uint64("product_id", id))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
