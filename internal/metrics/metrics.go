// Package metrics instruments order submission with Prometheus counters
// and a latency histogram. Nothing here serves HTTP; callers gather the
// registry and render it with WriteText.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/efreitasn/matchcore/internal/domain"
)

const namespace = "matchcore"

// Collector holds the matching metrics for every market.
type Collector struct {
	submitted     *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	trades        *prometheus.CounterVec
	tradedQty     *prometheus.CounterVec
	restedQty     *prometheus.CounterVec
	matchDuration *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Limit orders accepted by the matching engine.",
		}, []string{"market", "side"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Limit orders rejected before reaching a book.",
		}, []string{"reason"}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Trade events produced.",
		}, []string{"market"}),
		tradedQty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Quantity executed across all trades.",
		}, []string{"market"}),
		restedQty: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rested_quantity_total",
			Help:      "Quantity left resting by maker events.",
		}, []string{"market"}),
		matchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent matching one limit order.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"market"}),
	}

	for _, col := range []prometheus.Collector{
		c.submitted, c.rejected, c.trades, c.tradedQty, c.restedQty, c.matchDuration,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveResult records an accepted submission on market.
func (c *Collector) ObserveResult(market string, side domain.OrderSide, res domain.MatchResult, took time.Duration) {
	c.submitted.WithLabelValues(market, side.String()).Inc()
	c.matchDuration.WithLabelValues(market).Observe(took.Seconds())
	for _, ev := range res.Events {
		switch e := ev.(type) {
		case domain.Trade:
			c.trades.WithLabelValues(market).Inc()
			c.tradedQty.WithLabelValues(market).Add(float64(e.Qty))
		case domain.Maker:
			c.restedQty.WithLabelValues(market).Add(float64(e.Qty))
		}
	}
}

// ObserveRejection records a submission that failed with err.
func (c *Collector) ObserveRejection(err error) {
	c.rejected.WithLabelValues(RejectReason(err)).Inc()
}

// RejectReason maps a submission error to a metric label.
func RejectReason(err error) string {
	for _, sentinel := range []error{
		domain.ErrMarketNotFound,
		domain.ErrInvalidSide,
		domain.ErrInvalidPrice,
		domain.ErrInvalidQuantity,
		domain.ErrInvalidSymbol,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "unknown"
}

// WriteText gathers g and writes every metric family in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
