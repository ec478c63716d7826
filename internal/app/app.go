package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/shophub/shop-api/internal/config"
	"github.com/shophub/shop-api/internal/payment/razorpay"
	"github.com/shophub/shop-api/internal/service"
	"github.com/shophub/shop-api/internal/storage"
	"github.com/shophub/shop-api/internal/storage/rediscache"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Redis  *redis.Client // nil, если кэш каталога выключен
	Router http.Handler
}

// NewApp создаёт новый экземпляр App: подключения к БД и redis, сервисы и роутер
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	cartRepo := storage.NewCartRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	statsRepo := storage.NewStatsRepository(db)

	var productRepo storage.ProductStorage = storage.NewProductRepository(db)
	if cfg.Redis.Address != "" {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, errors.Wrap(err, "failed to ping redis")
		}
		productRepo = rediscache.NewProductCache(log, productRepo, app.Redis, cfg.Redis.ProductTTL)
		log.Info("product cache enabled", slog.String("redis", cfg.Redis.Address))
	}

	provider := razorpay.New(log, razorpay.Config{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	})

	services := Services{
		Auth:    service.NewAuthService(log, userRepo, cfg.JWT.Secret, cfg.JWT.TokenTTL),
		Product: service.NewProductService(log, productRepo),
		Cart:    service.NewCartService(log, db, cartRepo),
		Order:   service.NewOrderService(log, orderRepo),
		Admin:   service.NewAdminService(log, userRepo, orderRepo, statsRepo),
		Payment: service.NewPaymentService(log, provider, service.PaymentConfig{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			Currency:  cfg.Razorpay.Currency,
		}),
	}
	app.Router = NewRouter(log, cfg, services, userRepo)

	return app, nil
}

// Close закрывает соединения с хранилищами
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("failed to close database", slog.Any("error", err))
	}
}
