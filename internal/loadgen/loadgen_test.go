package loadgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/matchcore/internal/config"
	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

var testCfg = config.LoadtestConfig{Orders: 1000, PriceMin: 90, PriceMax: 110, MaxQty: 100}

func restingFrom(r *engine.Registry) RestingReader {
	return func(id domain.MarketID) (uint64, error) {
		var total uint64
		err := r.WithBook(id, func(ob *engine.OrderBook) {
			total = ob.RestingQuantity(domain.OrderSideBid) + ob.RestingQuantity(domain.OrderSideAsk)
		})
		return total, err
	}
}

// registrySubmitter adapts a Registry to the Submitter interface.
type registrySubmitter struct{ r *engine.Registry }

func (s registrySubmitter) SubmitLimitOrder(id domain.MarketID, side domain.OrderSide, price, qty uint64) ([]domain.MatchEvent, error) {
	res, err := s.r.PlaceLimitOrder(id, side, price, qty)
	return res.Events, err
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(testCfg, 42)
	b := NewGenerator(testCfg, 42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestGenerator_Bounds(t *testing.T) {
	g := NewGenerator(testCfg, 1)
	sides := map[domain.OrderSide]int{}
	for i := 0; i < 5000; i++ {
		o := g.Next()
		require.GreaterOrEqual(t, o.Price, testCfg.PriceMin)
		require.Less(t, o.Price, testCfg.PriceMax)
		require.GreaterOrEqual(t, o.Quantity, uint64(1))
		require.Less(t, o.Quantity, testCfg.MaxQty)
		sides[o.Side]++
	}
	assert.Greater(t, sides[domain.OrderSideBid], 0)
	assert.Greater(t, sides[domain.OrderSideAsk], 0)
}

func TestRun_ConservesQuantity(t *testing.T) {
	r := engine.NewRegistry()
	id, _ := r.AddMarket(domain.Pair{Base: "BTC", Quote: "USD"})

	rep, err := Run(registrySubmitter{r}, restingFrom(r), id, NewGenerator(testCfg, 7), 5000)
	require.NoError(t, err)

	assert.Equal(t, 5000, rep.Orders)
	assert.True(t, rep.Conserved())
	assert.Greater(t, rep.Trades, 0)
	assert.Greater(t, rep.OrdersPerSecond(), 0.0)
	require.NoError(t, r.WithBook(id, func(ob *engine.OrderBook) {
		assert.NoError(t, ob.CheckInvariants())
	}))
}

func TestRun_UnknownMarket(t *testing.T) {
	r := engine.NewRegistry()

	rep, err := Run(registrySubmitter{r}, restingFrom(r), 3, NewGenerator(testCfg, 7), 10)
	assert.True(t, errors.Is(err, domain.ErrMarketNotFound))
	assert.Equal(t, 0, rep.Orders)
}

func TestReport_Conserved(t *testing.T) {
	assert.True(t, Report{SubmittedQuantity: 5, RestingQuantity: 1, TradedQuantity: 2}.Conserved())
	assert.False(t, Report{SubmittedQuantity: 5, RestingQuantity: 2, TradedQuantity: 2}.Conserved())
	assert.Zero(t, Report{Orders: 3}.OrdersPerSecond())
}
