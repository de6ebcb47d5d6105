package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"

	defaultJWTSecret = "dev-secret-change-in-production"
)

type Config struct {
	Port           string
	Env            string
	Store          string
	DatabaseDSN    string
	MigrateOnStart bool
	JWTSecret      string
	JWTExpiry      time.Duration
	HashAlgorithm  string
	BcryptCost     int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		Store:          getEnv("STORE", StoreMySQL),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/zkvault?parseTime=true"),
		MigrateOnStart: getBool("MIGRATE_ON_START", true, &errs),
		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiry:      getDuration("JWT_EXPIRY", 6*time.Hour, &errs),
		HashAlgorithm:  getEnv("HASH_ALGORITHM", "argon2id"),
		BcryptCost:     getInt("BCRYPT_COST", 12, &errs),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 5, &errs),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 10, &errs),
	}

	if cfg.Store != StoreMySQL && cfg.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreMySQL, StoreMemory, cfg.Store))
	}
	if cfg.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if cfg.Env == "production" {
		if cfg.JWTSecret == defaultJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET must be set in production environment"))
		}
		if cfg.Store == StoreMemory {
			errs = append(errs, errors.New("STORE=memory is not allowed in production"))
		}
	}

	return cfg, errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
