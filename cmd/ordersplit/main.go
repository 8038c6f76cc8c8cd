package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/efreitasn/ordersplit/internal/calendar"
	"github.com/efreitasn/ordersplit/internal/config"
	"github.com/efreitasn/ordersplit/internal/engine"
	"github.com/efreitasn/ordersplit/internal/service"
	"github.com/efreitasn/ordersplit/internal/store"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&splitCmd{}, "")
	commander.Register(&healthcheckCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// loadConfig reads the given .env files (default ./.env) and the
// environment.
func loadConfig(dotEnv ...string) (*config.Config, error) {
	if err := config.LoadDotEnv(dotEnv...); err != nil {
		return nil, err
	}
	return config.Load()
}

// newLogger builds the JSON slog logger for the configured level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// newOrderService wires the pricing resolver, calendar, and ledger into an
// OrderService.
func newOrderService(cfg *config.Config, logger *slog.Logger) (*service.OrderService, error) {
	cal, err := calendar.New(cfg.MarketOpenDays)
	if err != nil {
		return nil, fmt.Errorf("market calendar: %w", err)
	}
	return service.NewOrderService(
		engine.NewPriceResolver(cfg.DefaultStockPrice),
		cal,
		store.NewLedger(),
		service.Options{
			ShareDecimalPrecision: cfg.ShareDecimalPrecision,
			Currency:              cfg.Currency,
		},
		logger,
	), nil
}
