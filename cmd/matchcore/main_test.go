package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/matchcore/internal/config"
	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/metrics"
	"github.com/efreitasn/matchcore/internal/service"
	"github.com/efreitasn/matchcore/internal/store"
)

func newTestService(t *testing.T) (*service.MarketService, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewMarketService(engine.NewRegistry(), store.NewTape(), collector, logger), reg
}

func TestRunDemo(t *testing.T) {
	svc, _ := newTestService(t)
	var out bytes.Buffer

	require.NoError(t, runDemo(&out, svc, 5))

	got := out.String()
	assert.Contains(t, got, "RESTING: order #1 (ask) -> 2 units @ 50000")
	assert.Contains(t, got, "TRADE: maker #1 matched taker #2 -> 1 units @ 50000")
	assert.Contains(t, got, "TRADE: maker #1 matched taker #3 -> 1 units @ 50000")
	assert.Contains(t, got, "RESTING: order #3 (bid) -> 1 units @ 50000")
	assert.NotContains(t, got, "spread")
	assert.Equal(t, 1, strings.Count(got, "   bid "))
	assert.Zero(t, strings.Count(got, "   ask "))
}

func TestRunLoadtest(t *testing.T) {
	svc, reg := newTestService(t)
	var out bytes.Buffer
	cfg := config.LoadtestConfig{Orders: 2000, Seed: 11, PriceMin: 95, PriceMax: 105, MaxQty: 20}

	require.NoError(t, runLoadtest(&out, svc, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))))
	assert.Contains(t, out.String(), "orders:    2000\n")

	var text bytes.Buffer
	require.NoError(t, metrics.WriteText(&text, reg))
	assert.Contains(t, text.String(), `matchcore_orders_submitted_total{`)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn")

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
}
