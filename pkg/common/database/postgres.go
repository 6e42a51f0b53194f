package database

import (
	"fmt"
	"sync"

	"github.com/chi-bristol/icca-curation/pkg/common/config"
	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	platformDB   *gorm.DB
	platformOnce sync.Once

	reportingDB   *gorm.DB
	reportingOnce sync.Once
)

// GetPostgres returns the platform database holding the tables this
// service owns (audit events, corrections, link tables).
func GetPostgres() (*gorm.DB, error) {
	var err error
	platformOnce.Do(func() {
		cfg := config.Load()
		dsn := buildDSN(cfg.PostgresHost, cfg.PostgresUser, cfg.PostgresPassword,
			cfg.PostgresDB, cfg.PostgresPort, cfg.PostgresSSLMode)

		platformDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			logger.Log.WithError(err).Error("Failed to connect to platform database")
			return
		}

		logger.Log.Info("Connected to platform database")
	})

	return platformDB, err
}

// GetReporting returns the ICCA reporting replica. The star schema there
// is reference data: this connection is never used to write or migrate.
func GetReporting() (*gorm.DB, error) {
	var err error
	reportingOnce.Do(func() {
		cfg := config.Load()
		dsn := buildDSN(cfg.ReportingHost, cfg.ReportingUser, cfg.ReportingPassword,
			cfg.ReportingDB, cfg.ReportingPort, cfg.ReportingSSLMode)

		reportingDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			logger.Log.WithError(err).Error("Failed to connect to reporting replica")
			return
		}

		logger.Log.Info("Connected to reporting replica")
	})

	return reportingDB, err
}

func buildDSN(host, user, password, dbname, port, sslmode string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode,
	)
}

func ClosePostgres() error {
	if platformDB != nil {
		sqlDB, err := platformDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func CloseReporting() error {
	if reportingDB != nil {
		sqlDB, err := reportingDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
