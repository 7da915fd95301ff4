package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"storefront/internal/api"
	"storefront/internal/api/handlers"
	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/pkg/metrics"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting storefront", slog.String("env", cfg.Env), slog.String("addr", cfg.HTTPAddr))

	pool, err := database.Connect(cfg)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Seed(ctx, pool, log); err != nil {
		cancel()
		log.Error("failed to seed database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cancel()

	users := repository.NewUserRepository(pool)
	sessions := repository.NewSessionRepository(pool)
	carts := repository.NewCartRepository(pool)
	favorites := repository.NewFavoriteRepository(pool)
	orders := repository.NewOrderRepository(pool)

	var products repository.ProductRepository = repository.NewProductRepository(pool)
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg)
		if err != nil {
			log.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rdb.Close()
		products = cache.NewCachedProductRepository(products, rdb, log)
		log.Info("product cache enabled", slog.String("redis_addr", cfg.RedisAddr))
	}

	authenticator := auth.NewAuthenticator(sessions, users)
	checkout := service.NewCheckout(carts, orders, log)
	m := metrics.NewServerMetrics("api")

	h := api.Handlers{
		Auth:      handlers.NewAuthHandler(users, sessions, authenticator, log),
		Products:  handlers.NewProductHandler(products, log),
		Carts:     handlers.NewCartHandler(carts, products, log),
		Favorites: handlers.NewFavoriteHandler(favorites, log),
		Orders:    handlers.NewOrderHandler(checkout, orders, m.OrdersFinalized, log),
	}

	router := api.NewRouter(h, authenticator, m, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("listening", slog.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
