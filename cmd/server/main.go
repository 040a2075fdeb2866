package main

import (
	"net/http"

	"aura-be/internal/config"
	"aura-be/internal/db"
	"aura-be/internal/discount"
	"aura-be/internal/logger"
	"aura-be/internal/middleware"
	"aura-be/internal/order"
	"aura-be/internal/payment"
	"aura-be/internal/payment/webhook"
	"aura-be/internal/product"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	productRepo := product.NewRepository(database)

	discountRepo := discount.NewRepository(database)
	discountSvc := discount.NewService(discountRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, discountSvc, cfg.TaxRate)

	gateway := payment.NewGateway(
		payment.Credentials{Key: cfg.PayUKey, Salt: cfg.PayUSalt},
		cfg.PayUGatewayURL,
		cfg.PaymentReturnURL,
	)
	paymentRepo := payment.NewRepository(database)

	orderHandler := order.NewHandler(orderSvc, gateway)
	webhookHandler := webhook.NewHandler(orderSvc, gateway, paymentRepo)
	productHandler := product.NewHandler(productRepo)
	discountHandler := discount.NewHandler(discountSvc)

	mux := http.NewServeMux()

	// Authenticated storefront API.
	mux.Handle("POST /api/orders", middleware.RequireAuth(http.HandlerFunc(orderHandler.CreateOrderHandler)))
	mux.Handle("GET /api/orders", middleware.RequireAuth(http.HandlerFunc(orderHandler.ListOrdersHandler)))
	mux.Handle("GET /api/orders/{id}", middleware.RequireAuth(http.HandlerFunc(orderHandler.GetOrderHandler)))
	mux.Handle("PATCH /api/orders/{id}/status", middleware.RequireAuth(http.HandlerFunc(orderHandler.UpdateStatusHandler)))
	mux.Handle("POST /api/payments/hash", middleware.RequireAuth(http.HandlerFunc(webhookHandler.GenerateHashHandler)))

	// Owner/admin inventory and discount management.
	mux.Handle("GET /api/products/stock", middleware.RequireAuth(http.HandlerFunc(productHandler.StockLevelsHandler)))
	mux.Handle("PUT /api/products/{id}/stock", middleware.RequireAuth(http.HandlerFunc(productHandler.UpdateStockHandler)))
	mux.Handle("GET /api/discounts", middleware.RequireAuth(http.HandlerFunc(discountHandler.ListHandler)))
	mux.Handle("POST /api/discounts", middleware.RequireAuth(http.HandlerFunc(discountHandler.CreateHandler)))
	mux.Handle("DELETE /api/discounts/{code}", middleware.RequireAuth(http.HandlerFunc(discountHandler.DeleteHandler)))

	// Gateway-facing endpoints carry their own verification; no auth here.
	mux.HandleFunc("POST /webhook/payu", webhookHandler.PaymentWebhookHandler)
	mux.HandleFunc("POST /payment/return", webhook.PaymentReturnHandler)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Auth runs before the rate limiter so authenticated traffic is
	// bucketed per user, not per source IP.
	handler := logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.AuthMiddleware(
				middleware.RateLimitMiddleware(mux),
			),
		),
	)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, handler); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
