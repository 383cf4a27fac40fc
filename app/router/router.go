// Package router assembles the HTTP routes of the shop.
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopbot/miniapp-shop/app/admin"
	"github.com/shopbot/miniapp-shop/app/catalog"
	"github.com/shopbot/miniapp-shop/app/categories"
	"github.com/shopbot/miniapp-shop/app/storefront"
	"go.uber.org/zap"
)

type Handlers struct {
	Storefront *storefront.Handler
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Admin      *admin.AdminHandler
	Auth       *admin.Auth
	UploadDir  string
}

func New(h Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Storefront
	r.Get("/", h.Storefront.HandleShop)
	r.Get("/shop", h.Storefront.HandleShop)
	r.Handle(admin.UploadsPrefix+"*", http.StripPrefix(admin.UploadsPrefix, http.FileServer(http.Dir(h.UploadDir))))

	// Catalog API
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Catalog.HandleGet)
		r.Get("/products/{id}", h.Catalog.HandleGetProduct)
		r.Get("/categories", h.Categories.HandleGetAll)
	})

	// Admin
	r.Get("/admin/login", h.Auth.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAdmin)
		r.Get("/admin", h.Admin.HandlePage)
		r.Post("/admin/add", h.Admin.HandleAdd)
		r.Post("/admin/delete/{id}", h.Admin.HandleDelete)
		r.Post("/add", h.Admin.HandleAdd)
		r.Post("/delete/{id}", h.Admin.HandleDelete)
	})

	return r
}

func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
