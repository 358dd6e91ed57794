package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BuildTradeHQ/buildtrade_api/internal/cache"
	"github.com/BuildTradeHQ/buildtrade_api/internal/config"
	"github.com/BuildTradeHQ/buildtrade_api/internal/database"
	"github.com/BuildTradeHQ/buildtrade_api/internal/handler"
	"github.com/BuildTradeHQ/buildtrade_api/internal/middleware"
	"github.com/BuildTradeHQ/buildtrade_api/internal/models"
	"github.com/BuildTradeHQ/buildtrade_api/internal/notify"
	"github.com/BuildTradeHQ/buildtrade_api/internal/repository"
	"github.com/BuildTradeHQ/buildtrade_api/internal/service"
	"github.com/BuildTradeHQ/buildtrade_api/internal/worker"
)

// main is the application entrypoint for the BuildTrade marketplace API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting buildtrade api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize price cache
	priceCache := cache.NewPriceCache(redisClient)

	// 4. Initialize order status notifiers
	hooks := notify.NewHooks()
	hooks.Register(notify.NewLogNotifier())
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaNotifier.Close()
		hooks.Register(kafkaNotifier)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka notifier registered")
	}

	// 5. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	bulkRequestRepo := repository.NewBulkRequestRepository(db)
	bidRepo := repository.NewBidRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)

	// 6. Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	pricingSvc := service.NewPricingService(db, materialRepo, priceCache)
	inventorySvc := service.NewInventoryService(db, materialRepo, alertRepo)
	catalogSvc := service.NewCatalogService(db, materialRepo, priceCache, pricingSvc)
	bidSvc := service.NewBidService(db, bulkRequestRepo, bidRepo, materialRepo)
	cartSvc := service.NewCartService(db, cartRepo, materialRepo, pricingSvc)
	checkoutSvc := service.NewCheckoutService(db, cartRepo, orderRepo, pricingSvc, inventorySvc,
		cfg.Checkout.TaxRate, cfg.Checkout.DeliveryCharge)
	orderSvc := service.NewOrderService(orderRepo, hooks)
	supplierSvc := service.NewSupplierService(db, supplierRepo, materialRepo)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:      handler.NewHealthHandler(db),
		Auth:        handler.NewAuthHandler(authSvc),
		Catalog:     handler.NewCatalogHandler(catalogSvc, inventorySvc),
		BulkRequest: handler.NewBulkRequestHandler(bidSvc),
		Bid:         handler.NewBidHandler(bidSvc),
		Cart:        handler.NewCartHandler(cartSvc),
		Order:       handler.NewOrderHandler(checkoutSvc, orderSvc),
		Supplier:    handler.NewSupplierHandler(supplierSvc),
	}

	// 8. Initialize middleware
	authMw := middleware.NewAuthMiddleware(cfg.JWTSecret)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, authMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewAlertWorker(inventorySvc, cfg.Worker.AlertSweepInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Catalog     *handler.CatalogHandler
	BulkRequest *handler.BulkRequestHandler
	Bid         *handler.BidHandler
	Cart        *handler.CartHandler
	Order       *handler.OrderHandler
	Supplier    *handler.SupplierHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMw *middleware.AuthMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public auth routes
	auth := router.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	// Catalog (authenticated; prices depend on the caller's role)
	catalog := router.Group("/v1/catalog")
	catalog.Use(authMw.Handle())
	{
		catalog.GET("/categories", handlers.Catalog.ListCategories)
		catalog.GET("/materials", handlers.Catalog.ListMaterials)
		catalog.GET("/materials/:id", handlers.Catalog.GetMaterial)
	}

	// Bulk requests and bids
	bulk := router.Group("/v1/bulk-requests")
	bulk.Use(authMw.Handle())
	{
		bulk.POST("", handlers.BulkRequest.Create)
		bulk.GET("", handlers.BulkRequest.List)
		bulk.GET("/:id", handlers.BulkRequest.Get)
		bulk.POST("/:id/close", handlers.BulkRequest.Close)
		bulk.POST("/:id/bids", handlers.Bid.Place)
	}
	bids := router.Group("/v1/bids")
	bids.Use(authMw.Handle())
	{
		bids.GET("", handlers.Bid.List)
		bids.PUT("/:id", handlers.Bid.Update)
		bids.POST("/:id/accept", handlers.Bid.Accept)
	}

	// Supplier directory and material sourcing links
	suppliers := router.Group("/v1/suppliers")
	suppliers.Use(authMw.Handle())
	{
		suppliers.GET("", handlers.Supplier.List)
		suppliers.GET("/me", handlers.Supplier.GetProfile)
		suppliers.PUT("/me", handlers.Supplier.UpsertProfile)
		suppliers.GET("/materials", handlers.Supplier.ListLinks)
		suppliers.POST("/materials", handlers.Supplier.LinkMaterial)
		suppliers.DELETE("/materials/:id", handlers.Supplier.UnlinkMaterial)
	}

	// Cart and checkout
	cart := router.Group("/v1/cart")
	cart.Use(authMw.Handle())
	{
		cart.GET("", handlers.Cart.Get)
		cart.POST("/items", handlers.Cart.Add)
		cart.PUT("/items/:id", handlers.Cart.UpdateItem)
		cart.DELETE("/items/:id", handlers.Cart.RemoveItem)
	}

	// Orders
	orders := router.Group("/v1/orders")
	orders.Use(authMw.Handle())
	{
		orders.POST("/checkout", handlers.Order.Checkout)
		orders.GET("", handlers.Order.List)
		orders.GET("/:id", handlers.Order.Get)
		orders.POST("/:id/review", handlers.Order.CreateReview)
	}
	router.GET("/v1/reviews", authMw.Handle(), handlers.Order.ListReviews)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.Use(authMw.Handle(), middleware.RequireRoles(models.RoleAdmin))
	{
		// Catalog management
		admin.POST("/categories", handlers.Catalog.CreateCategory)
		admin.POST("/materials", handlers.Catalog.CreateMaterial)
		admin.PUT("/materials/:id", handlers.Catalog.UpdateMaterial)
		admin.PUT("/materials/:id/price", handlers.Catalog.SetPrice)
		admin.PUT("/materials/:id/stock", handlers.Catalog.AdjustStock)

		// Inventory alerts
		admin.GET("/alerts", handlers.Catalog.ListAlerts)
		admin.POST("/alerts/:id/resolve", handlers.Catalog.ResolveAlert)

		// Supplier directory administration
		admin.POST("/suppliers", handlers.Supplier.Create)
		admin.PATCH("/suppliers/:id/active", handlers.Supplier.SetActive)

		// Order administration
		admin.PATCH("/orders/:id/status", handlers.Order.SetStatus)
		admin.GET("/reports/sales", handlers.Order.SalesReport)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
