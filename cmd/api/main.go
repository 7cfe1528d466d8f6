package main

import (
	"context"
	"log"
	"time"

	"printstore-api/internal/core/auth"
	"printstore-api/internal/core/cache"
	"printstore-api/internal/core/config"
	"printstore-api/internal/core/database"
	"printstore-api/internal/core/logger"
	"printstore-api/internal/core/server"
	cartadapter "printstore-api/internal/features/cart/adapters"
	carthandler "printstore-api/internal/features/cart/handler"
	cartservice "printstore-api/internal/features/cart/service"
	fulfillmentadapter "printstore-api/internal/features/fulfillment/adapters"
	fulfillmenthandler "printstore-api/internal/features/fulfillment/handler"
	fulfillmentservice "printstore-api/internal/features/fulfillment/service"
	orderadapter "printstore-api/internal/features/orders/adapters"
	orderhandler "printstore-api/internal/features/orders/handler"
	orderservice "printstore-api/internal/features/orders/service"
	pincodeadapter "printstore-api/internal/features/pincode/adapters"
	pincodehandler "printstore-api/internal/features/pincode/handler"
	pincodeservice "printstore-api/internal/features/pincode/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title Printstore API
// @version 1.0
// @description Storefront checkout, cart and fulfillment API backed by the Qikink print-on-demand service.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Database + migrations
	if err := database.Migrate(cfg.Database.URL); err != nil {
		l.Fatal("Migrations failed", zap.Error(err))
	}
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		l.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()
	l.Info("Database connection verified")

	// Shared cache
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis ping failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	// Auth
	verifier := auth.NewGoTrueVerifier(cfg.Auth)
	requireUser := auth.RequireUser(verifier)

	// Qikink vendor adapter and token cache
	qikink := fulfillmentadapter.NewQikinkAdapter(cfg.Qikink)
	tokens := fulfillmentadapter.NewTokenCache(qikink, redisCache,
		cfg.Qikink.MinRequestInterval(), cfg.Qikink.TokenSafetyMargin())

	// Repositories
	orderRepo := orderadapter.NewPostgresRepository(pool)
	cartRepo := cartadapter.NewPostgresRepository(pool)
	pincodeRepo := pincodeadapter.NewPostgresRepository(pool)

	// Services & handlers
	cartSvc := cartservice.NewCartService(cartRepo)
	cartHdl := carthandler.NewCartHandler(cartSvc)

	orderSvc := orderservice.NewOrdersService(orderRepo)
	orderHdl := orderhandler.NewOrdersHandler(orderSvc)

	fulfillmentSvc := fulfillmentservice.NewFulfillmentService(tokens, qikink, orderRepo)
	fulfillmentHdl := fulfillmenthandler.NewFulfillmentHandler(fulfillmentSvc, cartSvc, cfg.Environment)

	pincodeSvc := pincodeservice.NewPincodeService(pincodeRepo, redisCache)
	pincodeHdl := pincodehandler.NewPincodeHandler(pincodeSvc)

	srv := server.New(cfg)

	// Public routes
	srv.App.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "database": "unreachable"})
		}
		if err := redisCache.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "cache": "unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	srv.App.Post("/api/check-pincode", pincodeHdl.CheckPincode)

	// Authenticated routes
	api := srv.App.Group("/api", requireUser)
	api.Post("/checkout", fulfillmentHdl.Checkout)
	api.Get("/orders", orderHdl.ListOrders)
	api.Get("/orders/qikink-ids", fulfillmentHdl.QikinkOrderIDs)
	api.Get("/orders/qikink", fulfillmentHdl.QikinkOrders)
	api.Get("/cart", cartHdl.GetCart)
	api.Post("/cart", cartHdl.AddItem)
	api.Put("/cart", cartHdl.UpdateItem)
	api.Delete("/cart", cartHdl.RemoveItem)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
