package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/catfecito/storefront/internal/cart"
	"github.com/catfecito/storefront/internal/catalog"
	"github.com/catfecito/storefront/internal/config"
	"github.com/catfecito/storefront/internal/httpx"
	kafkax "github.com/catfecito/storefront/internal/kafka"
	"github.com/catfecito/storefront/internal/orders"
	"github.com/catfecito/storefront/internal/payments"
	"github.com/catfecito/storefront/internal/postgres"
	"github.com/catfecito/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer func() { _ = rdb.Close() }()

	// Fulfillment hook: fire-and-forget order.paid events.
	hook := kafkax.NewProducer(cfg.KafkaBrokers, payments.TopicOrderPaid, 1024, logger)
	hook.Start()

	orderRepo := &orders.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	productRepo := &catalog.Repo{DB: db}

	gateway := payments.NewClient(cfg.GatewayBaseURL, cfg.GatewayAccessToken)
	paySvc := &payments.Service{
		Ledger:              orderRepo,
		Gateway:             gateway,
		CurrencyID:          cfg.CurrencyID,
		PublicBaseURL:       cfg.PublicBaseURL,
		StatementDescriptor: "CATFECITO",
		Logger:              logger,
	}
	reconciler := &payments.Reconciler{
		Gateway: gateway,
		Ledger:  orderRepo,
		Hook:    hook,
		Redis:   rdb,
		Service: cfg.ServiceName,
		Logger:  logger,
	}

	router := httpx.NewRouter(httpx.Handlers{
		Auth:     &httpx.Auth{Secret: []byte(cfg.JWTSecret)},
		Cart:     &httpx.CartHandler{Store: cartRepo, Logger: logger},
		Orders:   &httpx.OrdersHandler{Ledger: orderRepo, Logger: logger},
		Payments: &httpx.PaymentsHandler{Service: paySvc, Reconciler: reconciler, Ledger: orderRepo, Redis: rdb, Logger: logger},
		Products: &httpx.ProductsHandler{Store: productRepo, Logger: logger},
	})

	// Backstop for payments that never confirm.
	reaper := &orders.Reaper{
		Ledger:   orderRepo,
		Interval: cfg.ReaperInterval,
		Grace:    cfg.ReaperGrace,
		Logger:   logger,
	}
	go reaper.Run(ctx)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	cancel()          // stop the reaper
	hook.Close()      // stop accepting events
	hook.WaitClosed() // flush what is queued
}
