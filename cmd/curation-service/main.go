package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chi-bristol/icca-curation/pkg/audit"
	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/common/kafka"
	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"github.com/chi-bristol/icca-curation/pkg/common/middleware"
	"github.com/chi-bristol/icca-curation/pkg/encounter"
	"github.com/chi-bristol/icca-curation/pkg/harmonization"
	"github.com/chi-bristol/icca-curation/pkg/locator"
	"github.com/chi-bristol/icca-curation/pkg/resolver"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	reportingDB, err := database.GetReporting()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to reporting replica")
	}

	producer := kafka.NewProducer(cfg.AuditKafkaTopic)
	defer producer.Close()
	auditor := audit.NewPublisher(producer, "curation-service")

	locatorRepo := locator.NewRepository(reportingDB)
	locatorSvc := locator.NewService(locatorRepo, cfg.MaxResultRows,
		locator.WithCache(database.GetRedis(), cfg.LocatorCacheTTL),
		locator.WithAudit(auditor),
	)

	resolverRepo := resolver.NewRepository(reportingDB)
	resolverSvc := resolver.NewService(resolverRepo, cfg.QueryTimeout, cfg.MaxResultRows,
		resolver.WithAudit(auditor),
	)

	catalog, err := harmonization.Load(cfg.VariableCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Warn("variable catalog not loaded, using default")
	}
	planner := harmonization.NewPlanner(catalog, resolverSvc, harmonization.WithAudit(auditor))

	corrections, err := encounter.LoadCorrections(cfg.CorrectionsPath)
	if err != nil {
		logger.Log.WithError(err).Warn("corrections list not loaded, ids pass through unchanged")
	}
	cleaner := encounter.NewCleaner(corrections, cfg.CardiacUnitID)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	locator.NewHTTPHandler(locatorSvc).Register(api)
	resolver.NewHTTPHandler(resolverSvc).Register(api)
	harmonization.NewHTTPHandler(planner).Register(api)
	encounter.NewHTTPHandler(cleaner).Register(api)

	// Resolver queries are allowed to run up to QueryTimeout, so the write
	// timeout must not cut the response off first.
	writeTimeout := cfg.WriteTimeout
	if cfg.QueryTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.QueryTimeout + 5*time.Second
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Curation Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Curation Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	database.CloseReporting()
	database.CloseRedis()

	logger.Log.Info("Curation Service stopped")
}
