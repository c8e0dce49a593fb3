package domain

import "fmt"

// MatchEvent is one fact produced by a submission: a Trade or a Maker.
// The set of implementations is closed.
type MatchEvent interface {
	fmt.Stringer
	isMatchEvent()
}

// Trade records an execution between a resting maker and the incoming
// taker, always at the maker's price.
type Trade struct {
	MakerID uint64 `json:"maker_id"`
	TakerID uint64 `json:"taker_id"`
	Price   uint64 `json:"price"`
	Qty     uint64 `json:"qty"`
}

func (Trade) isMatchEvent() {}

func (t Trade) String() string {
	return fmt.Sprintf("trade maker=%d taker=%d qty=%d price=%d", t.MakerID, t.TakerID, t.Qty, t.Price)
}

// Maker records the unmatched remainder of a submission resting on the book.
type Maker struct {
	ID    uint64    `json:"id"`
	Price uint64    `json:"price"`
	Qty   uint64    `json:"qty"`
	Side  OrderSide `json:"side"`
}

func (Maker) isMatchEvent() {}

func (m Maker) String() string {
	return fmt.Sprintf("maker id=%d side=%s qty=%d price=%d", m.ID, m.Side, m.Qty, m.Price)
}

// MatchResult holds the events of one submission in execution order:
// zero or more Trades followed by at most one Maker.
type MatchResult struct {
	Events []MatchEvent
}

// Trades returns the trade events in execution order.
func (r MatchResult) Trades() []Trade {
	trades := make([]Trade, 0, len(r.Events))
	for _, ev := range r.Events {
		if t, ok := ev.(Trade); ok {
			trades = append(trades, t)
		}
	}
	return trades
}

// Resting returns the Maker event, if the submission left quantity on the book.
func (r MatchResult) Resting() (Maker, bool) {
	if len(r.Events) == 0 {
		return Maker{}, false
	}
	m, ok := r.Events[len(r.Events)-1].(Maker)
	return m, ok
}

// FilledQuantity is the total quantity the taker executed.
func (r MatchResult) FilledQuantity() uint64 {
	var filled uint64
	for _, ev := range r.Events {
		if t, ok := ev.(Trade); ok {
			filled += t.Qty
		}
	}
	return filled
}
