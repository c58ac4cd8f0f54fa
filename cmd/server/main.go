package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bereketg/artisan-market/internal/app"
	"github.com/bereketg/artisan-market/internal/app/handlers"
	"github.com/bereketg/artisan-market/internal/auth/authmiddleware"
	"github.com/bereketg/artisan-market/internal/config"
	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/lib/logger"
	"github.com/bereketg/artisan-market/internal/lib/logger/handlers/urllog"
	"github.com/bereketg/artisan-market/internal/metrics"
	"github.com/bereketg/artisan-market/internal/service"
	"github.com/bereketg/artisan-market/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// secrets may come from a local .env during development
	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(metrics.Middleware)

	// repositories per entity
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	paymentRepo := storage.NewPaymentRepository(application.DB)
	commentRepo := storage.NewCommentRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.Redis, cfg.Redis.CartTTL)

	authService := service.NewAuthService(log, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute)
	sessionService := service.NewSessionService(log, userRepo)
	catalogService := service.NewCatalogService(log, productRepo)
	cartService := service.NewCartService(log, cartRepo, productRepo)
	paymentService := service.NewPaymentService(log, application.Chapa, paymentRepo, orderRepo, userRepo,
		application.Publisher, cfg.Chapa.Currency, cfg.Chapa.ReturnURL)
	checkoutService := service.NewCheckoutService(log, application.DB, cartService, cartRepo, productRepo,
		orderRepo, userRepo, paymentService, application.Publisher)
	orderService := service.NewOrderService(log, orderRepo, application.Publisher)
	commentService := service.NewCommentService(log, commentRepo, productRepo)

	// public endpoints
	router.Post("/api/auth/register", handlers.RegisterHandler(log, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(log, authService))
	router.Get("/api/products", handlers.ListProductsHandler(log, catalogService))
	router.Get("/api/products/{id}", handlers.GetProductHandler(log, catalogService))
	router.Get("/api/products/{id}/comments", handlers.ListCommentsHandler(log, commentService))
	router.Post("/accept-payment", handlers.AcceptPaymentHandler(log, paymentService))
	router.Handle("/metrics", promhttp.Handler())

	// authenticated endpoints
	router.Group(func(r chi.Router) {
		jwtMW := authmiddleware.New()
		r.Use(jwtMW)

		r.Get("/api/session/role", handlers.RoleHandler(log))
		r.Get("/api/session/user", handlers.SessionUserHandler(log, sessionService))

		r.Get("/api/cart", handlers.GetCartHandler(log, cartService))
		r.Post("/api/cart/items", handlers.AddCartItemHandler(log, cartService))
		r.Put("/api/cart/items/{productID}", handlers.SetCartQuantityHandler(log, cartService))
		r.Delete("/api/cart/items/{productID}", handlers.RemoveCartItemHandler(log, cartService))

		r.Post("/api/orders", handlers.CheckoutHandler(log, checkoutService))
		r.Get("/api/orders", handlers.ListOrdersHandler(log, orderService))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(log, orderService))
		r.Post("/api/orders/{id}/pay", handlers.RetryPaymentHandler(log, paymentService))
		r.Get("/api/payments/verify/{txRef}", handlers.VerifyPaymentHandler(log, paymentService))

		r.Post("/api/products/{id}/comments", handlers.CreateCommentHandler(log, commentService))
		r.Delete("/api/comments/{id}", handlers.DeleteCommentHandler(log, commentService))

		// listing management is artisan/admin territory
		r.Group(func(r chi.Router) {
			r.Use(authmiddleware.RequireRole(models.RoleArtisan, models.RoleAdmin))
			r.Post("/api/products", handlers.CreateProductHandler(log, catalogService))
			r.Put("/api/products/{id}", handlers.UpdateProductHandler(log, catalogService))
			r.Delete("/api/products/{id}", handlers.DeleteProductHandler(log, catalogService))
			r.Patch("/api/orders/{id}/status", handlers.UpdateOrderStatusHandler(log, orderService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}

	// let the event publisher drain its inbox
	cancel()
	application.Publisher.WaitClosed()

	log.Info("server gracefully stopped")
}
