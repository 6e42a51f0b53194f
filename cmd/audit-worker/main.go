package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chi-bristol/icca-curation/pkg/audit"
	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/database"
	"github.com/chi-bristol/icca-curation/pkg/common/kafka"
	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := audit.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate audit tables")
	}

	consumer := kafka.NewConsumer(cfg.AuditKafkaTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down audit worker...")
		cancel()
	}()

	logger.Log.WithField("topic", cfg.AuditKafkaTopic).Info("Audit worker started")

	err = consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
		return repo.Store(ctx, event)
	})
	if err != nil && err != context.Canceled {
		logger.Log.WithError(err).Error("consumer stopped")
	}

	database.ClosePostgres()
	logger.Log.Info("Audit worker stopped")
}
