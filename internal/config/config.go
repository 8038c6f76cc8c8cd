package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/efreitasn/ordersplit/internal/domain"
	"github.com/joho/godotenv"
)

// maxSharePrecision bounds SHARE_DECIMAL_PRECISION so quantities stay well
// inside float64's exact decimal range.
const maxSharePrecision = 12

// Config holds all runtime configuration for the order splitter.
type Config struct {
	Port                  int
	LogLevel              string
	ShareDecimalPrecision int
	DefaultStockPrice     float64
	Currency              string
	MarketOpenDays        []time.Weekday
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	ShutdownTimeout       time.Duration
}

// LoadDotEnv copies variables from the given .env files (default ".env")
// into the process environment without overriding variables that are
// already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 3000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	precision, err := getInt("SHARE_DECIMAL_PRECISION", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid SHARE_DECIMAL_PRECISION: %w", err)
	}
	if precision < 0 || precision > maxSharePrecision {
		return nil, fmt.Errorf("invalid SHARE_DECIMAL_PRECISION: %d, must be between 0 and %d", precision, maxSharePrecision)
	}

	defaultPrice, err := getFloat("DEFAULT_STOCK_PRICE", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_STOCK_PRICE: %w", err)
	}
	if !(defaultPrice > 0) {
		return nil, fmt.Errorf("invalid DEFAULT_STOCK_PRICE: %v, must be greater than 0", defaultPrice)
	}

	currency := strings.ToUpper(getStr("CURRENCY", "USD"))
	if !domain.KnownCurrency(currency) {
		return nil, fmt.Errorf("invalid CURRENCY: %q is not a known ISO 4217 code", currency)
	}

	openDays, err := getWeekdays("MARKET_OPEN_DAYS", []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_OPEN_DAYS: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                  port,
		LogLevel:              logLevel,
		ShareDecimalPrecision: precision,
		DefaultStockPrice:     defaultPrice,
		Currency:              currency,
		MarketOpenDays:        openDays,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           idleTimeout,
		ShutdownTimeout:       shutdownTimeout,
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

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

// getWeekdays parses a comma-separated list of weekday numbers,
// 0 = Sunday through 6 = Saturday.
func getWeekdays(key string, defaultVal []time.Weekday) ([]time.Weekday, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n < 0 || n > 6 {
			return nil, fmt.Errorf("weekday %d out of range 0-6", n)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
