package engine

import (
	"fmt"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/google/btree"
)

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         uint64
	TotalQuantity uint64
	OrderCount    int
}

// bidLess orders the bid side by price descending, so Min() returns the
// best (highest) bid.
func bidLess(a, b *level) bool {
	return a.price > b.price
}

// askLess orders the ask side by price ascending, so Min() returns the
// best (lowest) ask.
func askLess(a, b *level) bool {
	return a.price < b.price
}

// OrderBook holds the resting orders of a single market and runs the
// price-time priority matching algorithm over them.
//
// An OrderBook is not safe for concurrent use. Callers serialize every
// operation on one book; see Registry.
type OrderBook struct {
	bids        *btree.BTreeG[*level]
	asks        *btree.BTreeG[*level]
	nextOrderID uint64
}

// NewOrderBook creates an empty order book whose first order id is 1.
func NewOrderBook() *OrderBook {
	const degree = 32
	return &OrderBook{
		bids:        btree.NewG[*level](degree, bidLess),
		asks:        btree.NewG[*level](degree, askLess),
		nextOrderID: 1,
	}
}

func (ob *OrderBook) side(s domain.OrderSide) *btree.BTreeG[*level] {
	if s == domain.OrderSideBid {
		return ob.bids
	}
	return ob.asks
}

// crosses reports whether a resting level at restingPrice is eligible to
// trade against an incoming order of the given side and limit price.
func crosses(incoming domain.OrderSide, limit, restingPrice uint64) bool {
	if incoming == domain.OrderSideBid {
		return restingPrice <= limit
	}
	return restingPrice >= limit
}

// ExecuteLimitOrder matches an incoming limit order against the opposite
// side and rests any unfilled remainder on its own side.
//
// The returned events are in execution order: one Trade per resting order
// touched (best price first, oldest first within a price), then a Maker
// event if quantity was left resting. Invalid input returns a
// *domain.ValidationError and leaves the book, including its id counter,
// untouched.
func (ob *OrderBook) ExecuteLimitOrder(side domain.OrderSide, price, quantity uint64) (domain.MatchResult, error) {
	if err := domain.ValidateLimitOrder(side, price, quantity); err != nil {
		return domain.MatchResult{}, err
	}
	ob.assertUncrossed("before sweep")

	takerID := ob.nextOrderID
	ob.nextOrderID++

	var events []domain.MatchEvent
	remaining := quantity

	// Step 1: Sweep the opposite side, best price first. Drained levels are
	// collected and deleted afterwards; the tree is not restructured while
	// it is being iterated.
	opposite := ob.side(side.Opposite())
	var drained []*level
	opposite.Ascend(func(l *level) bool {
		if remaining == 0 || !crosses(side, price, l.price) {
			return false
		}
		var matched uint64
		matched, events = l.fill(takerID, remaining, events)
		remaining -= matched
		if l.empty() {
			drained = append(drained, l)
		}
		return true
	})

	// Step 2: Prune emptied levels.
	for _, l := range drained {
		opposite.Delete(l)
	}

	// Step 3: Rest the remainder at the tail of its own level.
	if remaining > 0 {
		events = append(events, domain.Maker{
			ID:    takerID,
			Price: price,
			Qty:   remaining,
			Side:  side,
		})
		own := ob.side(side)
		l, ok := own.Get(&level{price: price})
		if !ok {
			l = newLevel(price)
			own.ReplaceOrInsert(l)
		}
		l.append(&domain.Order{
			OrderID:           takerID,
			Side:              side,
			Price:             price,
			RemainingQuantity: remaining,
		})
	}

	for _, l := range drained {
		if opposite.Has(l) {
			panic(&InvariantError{Op: "prune", Detail: fmt.Sprintf("drained level %d still in book", l.price)})
		}
	}
	ob.assertUncrossed("after sweep")

	return domain.MatchResult{Events: events}, nil
}

// assertUncrossed panics if the best levels are empty or the best bid is
// at or above the best ask.
func (ob *OrderBook) assertUncrossed(op string) {
	bid, hasBid := ob.bids.Min()
	ask, hasAsk := ob.asks.Min()
	if hasBid && bid.empty() {
		panic(&InvariantError{Op: op, Detail: fmt.Sprintf("empty bid level %d", bid.price)})
	}
	if hasAsk && ask.empty() {
		panic(&InvariantError{Op: op, Detail: fmt.Sprintf("empty ask level %d", ask.price)})
	}
	if hasBid && hasAsk && bid.price >= ask.price {
		panic(&InvariantError{Op: op, Detail: fmt.Sprintf("crossed book: best bid %d >= best ask %d", bid.price, ask.price)})
	}
}

// CheckInvariants walks the whole book and reports the first structural
// problem found. It is O(orders) and meant for tests and diagnostics.
func (ob *OrderBook) CheckInvariants() error {
	var err error
	check := func(side domain.OrderSide) func(*level) bool {
		return func(l *level) bool {
			if l.empty() {
				err = fmt.Errorf("%s level %d is empty", side, l.price)
				return false
			}
			var prevID uint64
			for _, o := range l.orders {
				switch {
				case o.Price != l.price:
					err = fmt.Errorf("order %d priced %d sits at %s level %d", o.OrderID, o.Price, side, l.price)
				case o.Side != side:
					err = fmt.Errorf("order %d of side %s sits on %s side", o.OrderID, o.Side, side)
				case o.RemainingQuantity == 0:
					err = fmt.Errorf("order %d at %s level %d has no remaining quantity", o.OrderID, side, l.price)
				case o.OrderID <= prevID:
					err = fmt.Errorf("%s level %d out of arrival order: %d after %d", side, l.price, o.OrderID, prevID)
				case o.OrderID >= ob.nextOrderID:
					err = fmt.Errorf("order %d was never assigned (next id %d)", o.OrderID, ob.nextOrderID)
				}
				if err != nil {
					return false
				}
				prevID = o.OrderID
			}
			return true
		}
	}
	ob.bids.Ascend(check(domain.OrderSideBid))
	if err != nil {
		return err
	}
	ob.asks.Ascend(check(domain.OrderSideAsk))
	if err != nil {
		return err
	}

	bid, hasBid := ob.bids.Min()
	ask, hasAsk := ob.asks.Min()
	if hasBid && hasAsk && bid.price >= ask.price {
		return fmt.Errorf("crossed book: best bid %d >= best ask %d", bid.price, ask.price)
	}
	return nil
}

// BestBid returns the highest bid level.
func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	l, ok := ob.bids.Min()
	if !ok {
		return PriceLevel{}, false
	}
	return summarize(l), true
}

// BestAsk returns the lowest ask level.
func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	l, ok := ob.asks.Min()
	if !ok {
		return PriceLevel{}, false
	}
	return summarize(l), true
}

// TopBids returns up to n aggregated price levels from the bid side,
// ordered by price descending.
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	return topLevels(ob.bids, n)
}

// TopAsks returns up to n aggregated price levels from the ask side,
// ordered by price ascending.
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	return topLevels(ob.asks, n)
}

func topLevels(tree *btree.BTreeG[*level], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, min(n, tree.Len()))
	tree.Ascend(func(l *level) bool {
		levels = append(levels, summarize(l))
		return len(levels) < n
	})
	return levels
}

func summarize(l *level) PriceLevel {
	return PriceLevel{
		Price:         l.price,
		TotalQuantity: l.totalQuantity(),
		OrderCount:    len(l.orders),
	}
}

// OrdersAt returns copies of the orders resting at price on the given
// side, oldest first.
func (ob *OrderBook) OrdersAt(side domain.OrderSide, price uint64) []domain.Order {
	l, ok := ob.side(side).Get(&level{price: price})
	if !ok {
		return nil
	}
	out := make([]domain.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = *o
	}
	return out
}

// RestingQuantity sums the remaining quantity of every order on one side.
func (ob *OrderBook) RestingQuantity(side domain.OrderSide) uint64 {
	var total uint64
	ob.side(side).Ascend(func(l *level) bool {
		total += l.totalQuantity()
		return true
	})
	return total
}

// BidCount returns the number of individual bid orders on the book.
func (ob *OrderBook) BidCount() int {
	return orderCount(ob.bids)
}

// AskCount returns the number of individual ask orders on the book.
func (ob *OrderBook) AskCount() int {
	return orderCount(ob.asks)
}

func orderCount(tree *btree.BTreeG[*level]) int {
	n := 0
	tree.Ascend(func(l *level) bool {
		n += len(l.orders)
		return true
	})
	return n
}

// LevelCount returns the number of distinct prices on one side.
func (ob *OrderBook) LevelCount(side domain.OrderSide) int {
	return ob.side(side).Len()
}

// NextOrderID returns the id the next accepted submission will receive.
func (ob *OrderBook) NextOrderID() uint64 {
	return ob.nextOrderID
}
