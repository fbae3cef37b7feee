package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/transaction-ledger/internal/application/service"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/cache"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/config"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/db"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/handler"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-ledger/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load(os.Getenv("LEDGER_ENV_FILE"), os.Args[1:])
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	log.Info("Starting transaction ledger", map[string]interface{}{
		"addr":               cfg.Addr(),
		"strict_withdrawals": cfg.StrictWithdrawals,
	})

	badgerDB, err := db.OpenInMemory()
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store and its cache
	txCache := cache.NewTransactionCache()
	txCache.SetExpiration(cfg.CacheTTL)
	txCache.StartJanitor(ctx, cfg.CacheCleanupInterval)

	txRepo := db.NewBadgerTransactionRepository(badgerDB)
	store := service.NewRecordStore(txRepo, txCache, log.WithField("component", "record_store"))

	// Initialize services
	validator := service.NewValidator(store, log.WithField("component", "validator"))
	txService := service.NewTransactionService(store, validator, log.WithField("component", "transaction_service"),
		service.WithStrictWithdrawals(cfg.StrictWithdrawals))

	// Initialize handlers
	txHandler := handler.NewTransactionHandler(txService, log.WithField("component", "handler"), cfg.DefaultPageSize)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware, middleware.LoggingMiddleware(log), middleware.RecoveryMiddleware(log))
	txHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": cfg.Addr(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return
	case <-ctx.Done():
	}

	log.Info("Shutting down", map[string]interface{}{
		"timeout": cfg.ShutdownTimeout.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
