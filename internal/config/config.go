package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	RunModeHTTP   = "http"
	RunModeLambda = "lambda"
)

type Config struct {
	Port            string
	RunMode         string
	DBDriver        string
	DBDSN           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	RequestTimeout  time.Duration
	BcryptCost      int
	LogLevel        string
	LogFormat       string
}

// Load reads the environment (and .env when present) into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug(".env not loaded")
	}

	cfg := Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		RunMode:         strings.ToLower(getEnvOrDefault("RUN_MODE", RunModeHTTP)),
		DBDriver:        strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite)),
		DBDSN:           getEnvOrDefault("DB_DSN", "file:shop.db?_pragma=foreign_keys(1)"),
		MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30, time.Minute),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
		BcryptCost:      getIntEnv("BCRYPT_COST", bcrypt.DefaultCost),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.RunMode {
	case RunModeHTTP, RunModeLambda:
	default:
		return fmt.Errorf("config: unsupported RUN_MODE %q", c.RunMode)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// ConfigureLogger applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c Config) ConfigureLogger() {
	if c.LogFormat == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("value", c.LogLevel).Warn("invalid LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
