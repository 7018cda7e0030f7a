package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkorchagin/foodcart/internal"
	"github.com/mkorchagin/foodcart/internal/cache"
	"github.com/mkorchagin/foodcart/internal/events"
	"github.com/mkorchagin/foodcart/internal/handler"
	"github.com/mkorchagin/foodcart/internal/identity"
	"github.com/mkorchagin/foodcart/internal/middleware"
	"github.com/mkorchagin/foodcart/internal/repository"
	"github.com/mkorchagin/foodcart/internal/router"
	"github.com/mkorchagin/foodcart/internal/service"
	"github.com/mkorchagin/foodcart/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize cart cache
	logger.Info("Connecting to cart cache...")
	redisKV, err := cache.NewRedisKV(cfg.RedisUrl)
	if err != nil {
		return fmt.Errorf("failed to initialize redis client: %w", err)
	}
	defer redisKV.Close()

	if err := redisKV.Ping(ctx); err != nil {
		return fmt.Errorf("cart cache ping failed: %w", err)
	}
	logger.Info("Cart cache connection established")

	cartStore := cache.NewCartStore(redisKV)

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsUrl != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NatsUrl)
		if err != nil {
			return fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS event publisher initialized", "url", cfg.NatsUrl)
	} else {
		logger.Info("NATS_URL not set, cart events disabled")
	}

	// Initialize metrics
	metrics := middleware.NewMetrics("foodcart")
	cartMetrics := telemetry.NewCartMetrics("foodcart")

	// Initialize services
	offerStore := repository.NewPostgresOfferStore(pool)
	cartReader := service.NewCartReader(cartStore, cartMetrics, logger)
	reconciler := service.NewReconciler(offerStore, cartStore, publisher, logger, cfg.MinOrderSum)

	// Initialize identity resolution
	resolver := identity.NewCookieResolver(cfg.Env == "prod")

	// Initialize handlers
	cartHandler := handler.NewCartHandler(cartReader, reconciler, resolver, cartMetrics, logger)
	offerHandler := handler.NewOfferHandler(offerStore, logger)

	// Create router and register routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		router.Logger(logger),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/api/cart", cartHandler.View)
	r.Put("/api/cart", cartHandler.Sync)
	r.Get("/api/offers/{id}", offerHandler.Get)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting cart server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
