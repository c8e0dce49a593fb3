// Package loadgen drives a market with a deterministic stream of random
// limit orders and checks the book still conserves quantity afterwards.
package loadgen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/efreitasn/matchcore/internal/config"
	"github.com/efreitasn/matchcore/internal/domain"
)

// Order is one generated submission.
type Order struct {
	Side     domain.OrderSide
	Price    uint64
	Quantity uint64
}

// Generator produces random limit orders. Side is a fair coin, price is
// uniform in [PriceMin, PriceMax) and quantity uniform in [1, MaxQty).
type Generator struct {
	rng *rand.Rand
	cfg config.LoadtestConfig
}

// NewGenerator seeds a generator. The same seed always yields the same
// order stream.
func NewGenerator(cfg config.LoadtestConfig, seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		cfg: cfg,
	}
}

// Next returns the next order in the stream.
func (g *Generator) Next() Order {
	side := domain.OrderSideBid
	if g.rng.Intn(2) == 1 {
		side = domain.OrderSideAsk
	}
	return Order{
		Side:     side,
		Price:    g.cfg.PriceMin + uint64(g.rng.Int63n(int64(g.cfg.PriceMax-g.cfg.PriceMin))),
		Quantity: 1 + uint64(g.rng.Int63n(int64(g.cfg.MaxQty-1))),
	}
}

// Submitter is the part of the market service a load test drives.
type Submitter interface {
	SubmitLimitOrder(id domain.MarketID, side domain.OrderSide, price, quantity uint64) ([]domain.MatchEvent, error)
}

// RestingReader reports how much quantity rests on a market's book.
type RestingReader func(id domain.MarketID) (uint64, error)

// Report summarizes one load test run.
type Report struct {
	Orders            int
	Trades            int
	Makers            int
	SubmittedQuantity uint64
	TradedQuantity    uint64
	RestingQuantity   uint64
	Elapsed           time.Duration
}

// OrdersPerSecond is the submission throughput of the run.
func (r Report) OrdersPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Orders) / r.Elapsed.Seconds()
}

// Conserved reports whether every submitted unit is accounted for: each
// traded unit consumed one unit from a maker and one from the taker.
func (r Report) Conserved() bool {
	return r.SubmittedQuantity == r.RestingQuantity+2*r.TradedQuantity
}

// Run submits n generated orders to market id and returns a report. It
// assumes the market's book was empty before the run.
func Run(sub Submitter, resting RestingReader, id domain.MarketID, gen *Generator, n int) (Report, error) {
	var rep Report

	start := time.Now()
	for i := 0; i < n; i++ {
		o := gen.Next()
		events, err := sub.SubmitLimitOrder(id, o.Side, o.Price, o.Quantity)
		if err != nil {
			return rep, fmt.Errorf("order %d: %w", i, err)
		}
		rep.Orders++
		rep.SubmittedQuantity += o.Quantity
		for _, ev := range events {
			switch e := ev.(type) {
			case domain.Trade:
				rep.Trades++
				rep.TradedQuantity += e.Qty
			case domain.Maker:
				rep.Makers++
			}
		}
	}
	rep.Elapsed = time.Since(start)

	qty, err := resting(id)
	if err != nil {
		return rep, fmt.Errorf("read resting quantity: %w", err)
	}
	rep.RestingQuantity = qty

	if !rep.Conserved() {
		return rep, fmt.Errorf("quantity not conserved: submitted %d, resting %d, traded %d",
			rep.SubmittedQuantity, rep.RestingQuantity, rep.TradedQuantity)
	}
	return rep, nil
}
