package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/efreitasn/matchcore/internal/config"
	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/loadgen"
	"github.com/efreitasn/matchcore/internal/metrics"
	"github.com/efreitasn/matchcore/internal/service"
	"github.com/efreitasn/matchcore/internal/store"
)

const usage = `usage: matchcore [-metrics] <command>

commands:
  demo      replay a three-order BTC_USD session and print every event
  loadtest  submit random limit orders and report throughput
`

func main() {
	dumpMetrics := flag.Bool("metrics", false, "Print Prometheus metrics to stdout on exit")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level. Logs go to stderr so
	// stdout only carries command output.
	logger := newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		logger.Error("failed to set up metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}
	svc := service.NewMarketService(engine.NewRegistry(), store.NewTape(), collector, logger)

	switch cmd := flag.Arg(0); cmd {
	case "demo":
		err = runDemo(os.Stdout, svc, cfg.BookDepth)
	case "loadtest":
		err = runLoadtest(os.Stdout, svc, cfg.Loadtest, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", slog.String("command", flag.Arg(0)), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *dumpMetrics {
		if err := metrics.WriteText(os.Stdout, reg); err != nil {
			logger.Error("failed to write metrics", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

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

type demoStep struct {
	trader string
	side   domain.OrderSide
	price  uint64
	qty    uint64
}

var demoSteps = []demoStep{
	{"Alice", domain.OrderSideAsk, 50_000, 2},
	{"Bob", domain.OrderSideBid, 50_000, 1},
	{"Charlie", domain.OrderSideBid, 50_000, 2},
}

func runDemo(w io.Writer, svc *service.MarketService, depth int) error {
	id, err := svc.CreateMarket("BTC", "USD")
	if err != nil {
		return fmt.Errorf("create market: %w", err)
	}
	fmt.Fprintf(w, "--- market BTC_USD (id %d) ---\n", id)

	for i, step := range demoSteps {
		verb := "BUY"
		if step.side == domain.OrderSideAsk {
			verb = "SELL"
		}
		fmt.Fprintf(w, "\n%d. %s places %s order (%d BTC @ %d)\n", i+1, step.trader, verb, step.qty, step.price)

		events, err := svc.SubmitLimitOrder(id, step.side, step.price, step.qty)
		if err != nil {
			return fmt.Errorf("%s order: %w", step.trader, err)
		}
		printEvents(w, events)
	}

	book, err := svc.Depth(id, depth)
	if err != nil {
		return fmt.Errorf("read depth: %w", err)
	}
	printBook(w, book)
	return nil
}

func printEvents(w io.Writer, events []domain.MatchEvent) {
	for _, ev := range events {
		switch e := ev.(type) {
		case domain.Trade:
			fmt.Fprintf(w, "   TRADE: maker #%d matched taker #%d -> %d units @ %d\n", e.MakerID, e.TakerID, e.Qty, e.Price)
		case domain.Maker:
			fmt.Fprintf(w, "   RESTING: order #%d (%s) -> %d units @ %d\n", e.ID, e.Side, e.Qty, e.Price)
		}
	}
}

func printBook(w io.Writer, book *service.BookResponse) {
	fmt.Fprintf(w, "\n--- book %s ---\n", book.Pair)
	for i := len(book.Asks) - 1; i >= 0; i-- {
		l := book.Asks[i]
		fmt.Fprintf(w, "   ask %10d  %8d  (%d orders)\n", l.Price, l.TotalQuantity, l.OrderCount)
	}
	for _, l := range book.Bids {
		fmt.Fprintf(w, "   bid %10d  %8d  (%d orders)\n", l.Price, l.TotalQuantity, l.OrderCount)
	}
	if book.Spread != nil {
		fmt.Fprintf(w, "   spread %d\n", *book.Spread)
	}
}

func runLoadtest(w io.Writer, svc *service.MarketService, cfg config.LoadtestConfig, logger *slog.Logger) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger = logger.With(slog.String("run_id", uuid.New().String()))

	id, err := svc.CreateMarket("BTC", "USD")
	if err != nil {
		return fmt.Errorf("create market: %w", err)
	}

	logger.Info("loadtest starting",
		slog.Int("orders", cfg.Orders),
		slog.Int64("seed", seed),
		slog.Uint64("price_min", cfg.PriceMin),
		slog.Uint64("price_max", cfg.PriceMax),
	)
	rep, err := loadgen.Run(svc, svc.RestingQuantity, id, loadgen.NewGenerator(cfg, seed), cfg.Orders)
	if err != nil {
		return err
	}
	logger.Info("loadtest finished",
		slog.Duration("elapsed", rep.Elapsed),
		slog.Float64("orders_per_sec", rep.OrdersPerSecond()),
	)

	fmt.Fprintf(w, "orders:    %d\n", rep.Orders)
	fmt.Fprintf(w, "trades:    %d\n", rep.Trades)
	fmt.Fprintf(w, "makers:    %d\n", rep.Makers)
	fmt.Fprintf(w, "submitted: %d\n", rep.SubmittedQuantity)
	fmt.Fprintf(w, "traded:    %d\n", rep.TradedQuantity)
	fmt.Fprintf(w, "resting:   %d\n", rep.RestingQuantity)
	fmt.Fprintf(w, "elapsed:   %s (%.0f orders/sec)\n", rep.Elapsed, rep.OrdersPerSecond())
	return nil
}
