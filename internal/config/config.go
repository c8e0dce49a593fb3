package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the matchcore binary.
type Config struct {
	LogLevel  string
	BookDepth int
	Loadtest  LoadtestConfig
}

// LoadtestConfig shapes the random order stream of a load test run.
type LoadtestConfig struct {
	Orders   int
	Seed     int64 // 0 picks a time-based seed
	PriceMin uint64
	PriceMax uint64 // exclusive
	MaxQty   uint64 // exclusive
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	bookDepth, err := getInt("BOOK_DEPTH", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOK_DEPTH: %w", err)
	}
	if bookDepth < 1 {
		return nil, fmt.Errorf("invalid BOOK_DEPTH: %d, must be >= 1", bookDepth)
	}

	orders, err := getInt("LOADTEST_ORDERS", 100000)
	if err != nil {
		return nil, fmt.Errorf("invalid LOADTEST_ORDERS: %w", err)
	}
	if orders < 1 {
		return nil, fmt.Errorf("invalid LOADTEST_ORDERS: %d, must be >= 1", orders)
	}

	seed, err := getInt64("LOADTEST_SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LOADTEST_SEED: %w", err)
	}

	priceMin, err := getUint64("LOADTEST_PRICE_MIN", 90)
	if err != nil {
		return nil, fmt.Errorf("invalid LOADTEST_PRICE_MIN: %w", err)
	}
	if priceMin == 0 {
		return nil, fmt.Errorf("invalid LOADTEST_PRICE_MIN: must be > 0")
	}

	priceMax, err := getUint64("LOADTEST_PRICE_MAX", 110)
	if err != nil {
		return nil, fmt.Errorf("invalid LOADTEST_PRICE_MAX: %w", err)
	}
	if priceMax <= priceMin {
		return nil, fmt.Errorf("invalid LOADTEST_PRICE_MAX: %d, must be > LOADTEST_PRICE_MIN (%d)", priceMax, priceMin)
	}

	maxQty, err := getUint64("LOADTEST_MAX_QTY", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid LOADTEST_MAX_QTY: %w", err)
	}
	if maxQty < 2 {
		return nil, fmt.Errorf("invalid LOADTEST_MAX_QTY: %d, must be >= 2", maxQty)
	}

	return &Config{
		LogLevel:  logLevel,
		BookDepth: bookDepth,
		Loadtest: LoadtestConfig{
			Orders:   orders,
			Seed:     seed,
			PriceMin: priceMin,
			PriceMax: priceMax,
			MaxQty:   maxQty,
		},
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getUint64(key string, defaultVal uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
