package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

const (
	ClassifierModeThreshold = "threshold"
	ClassifierModeModel     = "model"

	ClassifierFailOpen   = "open"
	ClassifierFailClosed = "closed"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// Classifier strategy: "threshold" compares the amount against
	// SuspiciousThreshold, "model" asks the configured Gemini model.
	ClassifierMode      string  `env:"CLASSIFIER_MODE" envDefault:"threshold"`
	SuspiciousThreshold float64 `env:"SUSPICIOUS_THRESHOLD" envDefault:"50000"`
	ClassifierModel     string  `env:"CLASSIFIER_MODEL" envDefault:"gemini-2.0-flash"`
	ClassifierTimeoutS  int     `env:"CLASSIFIER_TIMEOUT_S" envDefault:"10"`
	// "open" treats a classifier failure as not-suspicious, "closed" flags
	// the transaction for manual review instead.
	ClassifierFailMode string `env:"CLASSIFIER_FAIL_MODE" envDefault:"open"`

	// Empty disables chain recording.
	ChainGatewayURL string `env:"CHAIN_GATEWAY_URL" envDefault:""`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) FailClosed() bool {
	return c.ClassifierFailMode == ClassifierFailClosed
}
