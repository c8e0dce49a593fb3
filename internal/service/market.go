package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/metrics"
	"github.com/efreitasn/matchcore/internal/store"
)

// BookResponse is a depth snapshot of one market.
type BookResponse struct {
	MarketID   domain.MarketID
	Pair       string
	Bids       []engine.PriceLevel
	Asks       []engine.PriceLevel
	Spread     *uint64 // nil if either side empty
	SnapshotAt time.Time
}

// MarketService is the API surface callers use: market creation and
// limit order submission. It feeds every accepted submission to the tape
// and the metrics collector.
type MarketService struct {
	registry *engine.Registry
	tape     *store.Tape
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewMarketService creates a new MarketService with the given dependencies.
func NewMarketService(
	registry *engine.Registry,
	tape *store.Tape,
	collector *metrics.Collector,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		registry: registry,
		tape:     tape,
		metrics:  collector,
		logger:   logger,
	}
}

// CreateMarket registers the base/quote pair and returns its id. Creating
// a market that already exists returns the existing id.
func (s *MarketService) CreateMarket(base, quote string) (domain.MarketID, error) {
	pair, err := domain.NewPair(base, quote)
	if err != nil {
		return 0, err
	}

	id, created := s.registry.AddMarket(pair)
	if created {
		s.logger.Info("market created",
			slog.Uint64("market_id", uint64(id)),
			slog.String("pair", pair.String()),
		)
	} else {
		s.logger.Debug("market already registered",
			slog.Uint64("market_id", uint64(id)),
			slog.String("pair", pair.String()),
		)
	}
	return id, nil
}

// SubmitLimitOrder routes a limit order to market id and returns the
// events it produced in execution order. On error nothing was matched or
// rested.
func (s *MarketService) SubmitLimitOrder(id domain.MarketID, side domain.OrderSide, price, quantity uint64) ([]domain.MatchEvent, error) {
	start := time.Now()
	res, err := s.registry.PlaceLimitOrder(id, side, price, quantity)
	took := time.Since(start)
	if err != nil {
		s.metrics.ObserveRejection(err)
		s.logger.Warn("order rejected",
			slog.Uint64("market_id", uint64(id)),
			slog.String("side", side.String()),
			slog.Uint64("price", price),
			slog.Uint64("quantity", quantity),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	pair, err := s.registry.Pair(id)
	if err != nil {
		return nil, err
	}
	s.tape.Append(id, res.Events...)
	s.metrics.ObserveResult(pair.String(), side, res, took)

	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		s.logger.Debug("order matched",
			slog.Uint64("market_id", uint64(id)),
			slog.String("side", side.String()),
			slog.Uint64("price", price),
			slog.Uint64("quantity", quantity),
			slog.Int("trades", len(res.Trades())),
			slog.Uint64("filled", res.FilledQuantity()),
		)
	}
	return res.Events, nil
}

// Depth returns up to n aggregated levels per side for market id.
func (s *MarketService) Depth(id domain.MarketID, n int) (*BookResponse, error) {
	depth, err := s.registry.Depth(id, n)
	if err != nil {
		return nil, err
	}

	resp := &BookResponse{
		MarketID:   id,
		Pair:       depth.Pair.String(),
		Bids:       depth.Bids,
		Asks:       depth.Asks,
		SnapshotAt: time.Now(),
	}
	if len(depth.Bids) > 0 && len(depth.Asks) > 0 {
		spread := depth.Asks[0].Price - depth.Bids[0].Price
		resp.Spread = &spread
	}
	return resp, nil
}

// Markets lists every registered market ordered by id.
func (s *MarketService) Markets() []engine.MarketInfo {
	return s.registry.Markets()
}

// RestingQuantity sums the quantity resting on both sides of market id.
func (s *MarketService) RestingQuantity(id domain.MarketID) (uint64, error) {
	var total uint64
	err := s.registry.WithBook(id, func(ob *engine.OrderBook) {
		total = ob.RestingQuantity(domain.OrderSideBid) + ob.RestingQuantity(domain.OrderSideAsk)
	})
	return total, err
}

// Totals returns the tape aggregates for market id.
func (s *MarketService) Totals(id domain.MarketID) store.Totals {
	return s.tape.Totals(id)
}
