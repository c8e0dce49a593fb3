package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/efreitasn/matchcore/internal/domain"
)

// market pairs an order book with the lock that serializes access to it.
type market struct {
	mu   sync.Mutex
	id   domain.MarketID
	pair domain.Pair
	book *OrderBook
}

// MarketInfo describes a registered market.
type MarketInfo struct {
	ID   domain.MarketID
	Pair domain.Pair
}

// BookDepth is a point-in-time view of the top of one market's book.
type BookDepth struct {
	MarketID domain.MarketID
	Pair     domain.Pair
	Bids     []PriceLevel
	Asks     []PriceLevel
}

// Registry maps market ids to their order books and routes submissions.
// Registration takes the registry write lock; submissions only take the
// read lock plus the target market's own lock, so different markets match
// in parallel.
type Registry struct {
	mu      sync.RWMutex
	byPair  map[domain.Pair]domain.MarketID
	markets map[domain.MarketID]*market
	lastID  domain.MarketID
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byPair:  make(map[domain.Pair]domain.MarketID),
		markets: make(map[domain.MarketID]*market),
	}
}

// AddMarket registers pair and returns its id. Registering a pair that
// already exists returns the existing id with created == false and has no
// other effect.
func (r *Registry) AddMarket(pair domain.Pair) (id domain.MarketID, created bool) {
	r.mu.RLock()
	id, ok := r.byPair[pair]
	r.mu.RUnlock()
	if ok {
		return id, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if id, ok = r.byPair[pair]; ok {
		return id, false
	}
	r.lastID++
	id = r.lastID
	r.byPair[pair] = id
	r.markets[id] = &market{id: id, pair: pair, book: NewOrderBook()}
	return id, true
}

func (r *Registry) market(id domain.MarketID) (*market, error) {
	r.mu.RLock()
	m, ok := r.markets[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("market %d: %w", id, domain.ErrMarketNotFound)
	}
	return m, nil
}

// PlaceLimitOrder forwards a limit order to the book of market id. It
// returns domain.ErrMarketNotFound (wrapped) for an unknown id and a
// *domain.ValidationError for a zero price or quantity.
func (r *Registry) PlaceLimitOrder(id domain.MarketID, side domain.OrderSide, price, quantity uint64) (domain.MatchResult, error) {
	m, err := r.market(id)
	if err != nil {
		return domain.MatchResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.ExecuteLimitOrder(side, price, quantity)
}

// Lookup returns the id registered for pair.
func (r *Registry) Lookup(pair domain.Pair) (domain.MarketID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pair]
	return id, ok
}

// Pair returns the instrument pair market id was created with.
func (r *Registry) Pair(id domain.MarketID) (domain.Pair, error) {
	m, err := r.market(id)
	if err != nil {
		return domain.Pair{}, err
	}
	return m.pair, nil
}

// Markets lists every registered market ordered by id.
func (r *Registry) Markets() []MarketInfo {
	r.mu.RLock()
	out := make([]MarketInfo, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, MarketInfo{ID: m.id, Pair: m.pair})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Depth returns up to n aggregated levels per side for market id.
func (r *Registry) Depth(id domain.MarketID, n int) (BookDepth, error) {
	m, err := r.market(id)
	if err != nil {
		return BookDepth{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return BookDepth{
		MarketID: id,
		Pair:     m.pair,
		Bids:     m.book.TopBids(n),
		Asks:     m.book.TopAsks(n),
	}, nil
}

// WithBook runs fn with exclusive access to the book of market id.
func (r *Registry) WithBook(id domain.MarketID, fn func(*OrderBook)) error {
	m, err := r.market(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.book)
	return nil
}
