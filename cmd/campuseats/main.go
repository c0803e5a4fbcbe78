package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"campuseats/config"
	"campuseats/internal/auth"
	"campuseats/internal/dining"
	handler "campuseats/internal/handler/http"
	"campuseats/internal/logger"
	"campuseats/internal/middleware"
	"campuseats/internal/notify"
	"campuseats/internal/repository"
	"campuseats/internal/repository/postgres"
	"campuseats/internal/service"
)

func main() {
	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKey, err := hex.DecodeString(cfg.TokenKey)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// push channel; the service degrades to poll-only when the broker
	// is unavailable
	var bus *notify.Bus
	bus, err = notify.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Log.Warn("Order event broker unavailable, push channel disabled", zap.Error(err))
		bus = nil
	} else {
		defer bus.Close()
	}

	// dependency injection
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	venueRepo := repository.NewVenueRepository(db)

	var diningClient service.DiningClient
	if cfg.DiningAddr != "" {
		diningClient = dining.NewClient(cfg.DiningAddr)
	}

	var publisher service.OrderPublisher
	if bus != nil {
		publisher = bus
	}

	userService := service.NewUserService(userRepo, token, diningClient)
	userHandler := handler.NewUserHandler(userService)

	orderService := service.NewOrderService(orderRepo, venueRepo, userRepo, publisher)
	orderHandler := handler.NewOrderHandler(orderService)

	jobService := service.NewJobService(orderRepo, venueRepo, publisher)
	jobHandler := handler.NewJobHandler(jobService)

	venueService := service.NewVenueService(venueRepo)
	venueHandler := handler.NewVenueHandler(venueService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())
	router.Get("/api/venues", venueHandler.ListVenues())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Get("/api/user/payment-profile", userHandler.GetPaymentProfile())
		group.Post("/api/orders", orderHandler.CreateOrder())
		group.Get("/api/orders", orderHandler.ListOrders())
		group.Get("/api/orders/{id}", orderHandler.GetOrder())
		group.Post("/api/orders/{id}/status", orderHandler.AdvanceOrderStatus())
		group.Post("/api/orders/{id}/cancel", orderHandler.CancelOrder())
		group.Post("/api/deliveries/confirm", orderHandler.ConfirmDelivery())
		group.Get("/api/jobs", jobHandler.ListAvailableJobs())
		group.Get("/api/jobs/scheduled", jobHandler.ListScheduledJobs())
		group.Post("/api/jobs/{id}/claim", jobHandler.ClaimJob())
		group.Get("/api/dasher/earnings", jobHandler.GetEarnings())
	})

	srv := http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		ctxT, cancelT := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelT()
		if err := srv.Shutdown(ctxT); err != nil {
			logger.Log.Error("Server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}

	logger.Log.Info("Server is shutdown")
}
