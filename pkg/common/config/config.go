package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Platform database (owned tables: audit, corrections, links)
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// ICCA reporting replica (read-only star schema)
	ReportingHost     string
	ReportingPort     string
	ReportingUser     string
	ReportingPassword string
	ReportingDB       string
	ReportingSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers    []string
	KafkaGroupID    string
	AuditKafkaTopic string

	// Query execution against the reporting replica
	QueryTimeout    time.Duration
	MaxResultRows   int
	LocatorCacheTTL time.Duration

	// Harmonization
	VariableCatalogPath string

	// Encounter cleaning
	CorrectionsPath string
	CardiacUnitID   int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "curation"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "curation123"),
		PostgresDB:       getEnv("POSTGRES_DB", "curation"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ReportingHost:     getEnv("REPORTING_HOST", "localhost"),
		ReportingPort:     getEnv("REPORTING_PORT", "5432"),
		ReportingUser:     getEnv("REPORTING_USER", "icca_reader"),
		ReportingPassword: getEnv("REPORTING_PASSWORD", ""),
		ReportingDB:       getEnv("REPORTING_DB", "CISReportingDB"),
		ReportingSSLMode:  getEnv("REPORTING_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:    getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", "icca-curation"),
		AuditKafkaTopic: getEnv("AUDIT_KAFKA_TOPIC", "curation.query-audit"),

		QueryTimeout:    getDuration("QUERY_TIMEOUT", 2*time.Minute),
		MaxResultRows:   getIntEnv("MAX_RESULT_ROWS", 500),
		LocatorCacheTTL: getDuration("LOCATOR_CACHE_TTL", 15*time.Minute),

		VariableCatalogPath: getEnv("VARIABLE_CATALOG_PATH", ""),

		CorrectionsPath: getEnv("ENCOUNTER_CORRECTIONS_PATH", ""),
		CardiacUnitID:   getIntEnv("CARDIAC_UNIT_ID", 8),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
