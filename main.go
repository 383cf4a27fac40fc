package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopbot/miniapp-shop/app/admin"
	"github.com/shopbot/miniapp-shop/app/bot"
	"github.com/shopbot/miniapp-shop/app/catalog"
	"github.com/shopbot/miniapp-shop/app/categories"
	"github.com/shopbot/miniapp-shop/app/config"
	"github.com/shopbot/miniapp-shop/app/logger"
	"github.com/shopbot/miniapp-shop/app/order"
	"github.com/shopbot/miniapp-shop/app/router"
	"github.com/shopbot/miniapp-shop/app/session"
	"github.com/shopbot/miniapp-shop/app/storefront"
	"github.com/shopbot/miniapp-shop/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Error("shop stopped with error", zap.Error(err))
		os.Exit(1)
	}
	l.Info("shop stopped")
}

func run(ctx context.Context, cfg *config.Config, l *zap.Logger) error {
	// Postgres
	db, sqlDB, err := models.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := models.RunMigrations(sqlDB, cfg.MigrationsPath); err != nil {
		return err
	}
	l.Info("database ready")

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	l.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Telegram
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	l.Info("authorized on telegram", zap.String("bot", api.Self.UserName))

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	productsRepo := models.NewProductsRepository(db)
	ordersRepo := models.NewOrdersRepository(db)
	sessions := session.NewStore(rdb)

	catalogService := catalog.NewService(productsRepo, l)
	intake := order.NewIntake(bot.NewNotifier(api), ordersRepo, cfg.Admins.IDs(), cfg.Currency, l)
	gateway := bot.NewGateway(api, intake, admin.NewLinkIssuer(sessions, cfg.BaseURL), cfg.Admins, cfg.BaseURL, l)

	handler := router.New(router.Handlers{
		Storefront: storefront.NewHandler(catalogService, cfg.Currency, l),
		Catalog:    catalog.NewCatalogHandler(catalogService),
		Categories: categories.NewCategoryHandler(catalogService),
		Admin:      admin.NewAdminHandler(catalogService, ordersRepo, admin.NewPhotoStorage(cfg.UploadDir), cfg.Currency, l),
		Auth:       admin.NewAuth(sessions, cfg.Admins, l),
		UploadDir:  cfg.UploadDir,
	}, l)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gateway.Run(ctx)
	})

	g.Go(func() error {
		l.Info("http server listening", zap.String("addr", srv.Addr), zap.String("shop_url", cfg.BaseURL+"/shop"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		l.Info("shutting down")
		return srv.Close()
	})

	return g.Wait()
}
