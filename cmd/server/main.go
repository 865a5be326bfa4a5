package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/PANHAVORN22/Mini-mart/internal/config"
	"github.com/PANHAVORN22/Mini-mart/internal/es"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/admin"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/auth"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/beer"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/cart"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/order"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/subscription"
	"github.com/PANHAVORN22/Mini-mart/internal/logging"
	"github.com/PANHAVORN22/Mini-mart/internal/mykafka"
	"github.com/PANHAVORN22/Mini-mart/internal/notifier"
	ordersvc "github.com/PANHAVORN22/Mini-mart/internal/service/order"
	"github.com/PANHAVORN22/Mini-mart/internal/service/token"
	httpserver "github.com/PANHAVORN22/Mini-mart/internal/transport/http"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("KAFKA_ADDRESS not set, event publishing disabled")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Printf("elasticsearch unavailable, search disabled: %v", err)
		esClient = nil
	}

	mailer, err := notifier.New(context.Background(), configuration)
	if err != nil {
		log.Printf("ses unavailable, confirmation emails disabled: %v", err)
	}

	orderService := &ordersvc.Service{DB: db, PricePolicy: configuration.PRICE_POLICY}
	tokenService := &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Logger())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:        db,
		JWTSecret: jwtSecret,
		AuthHandler: &auth.AuthHandler{
			DB:              db,
			JWTSecret:       jwtSecret,
			RefreshSecret:   refreshSecret,
			Producer:        prod,
			AdminSignupCode: configuration.ADMIN_SIGNUP_CODE,
		},
		BeerHandler:         &beer.BeerHandler{DB: db, JWTSecret: jwtSecret},
		CartHandler:         &cart.CartHandler{DB: db, Producer: prod},
		OrderHandler:        &order.OrderHandler{DB: db, Service: orderService, Producer: prod, Mailer: mailer},
		AdminHandler:        &admin.AdminHandler{DB: db, Producer: prod, ES: esClient},
		SubscriptionHandler: &subscription.SubscriptionHandler{DB: db},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: es.BeerIndex},
		TokenService:        tokenService,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
