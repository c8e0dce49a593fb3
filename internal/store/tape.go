package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/efreitasn/matchcore/internal/domain"
)

// Entry is one match event as recorded on the tape.
type Entry struct {
	EntryID    string
	Seq        uint64 // per-market, starting at 1
	MarketID   domain.MarketID
	Event      domain.MatchEvent
	RecordedAt time.Time
}

// Totals aggregates the tape of one market.
type Totals struct {
	Trades         int
	TradedQuantity uint64
	Makers         int
	RestedQuantity uint64
}

// Tape is a thread-safe in-memory ledger of match events, keyed by
// market. Entries are append-only and keep the causal order the engine
// produced them in.
type Tape struct {
	mu      sync.RWMutex
	entries map[domain.MarketID][]Entry
	totals  map[domain.MarketID]*Totals
	now     func() time.Time
}

// NewTape creates an empty Tape.
func NewTape() *Tape {
	return &Tape{
		entries: make(map[domain.MarketID][]Entry),
		totals:  make(map[domain.MarketID]*Totals),
		now:     time.Now,
	}
}

// Append records events for market id in the order given.
func (s *Tape) Append(id domain.MarketID, events ...domain.MatchEvent) {
	if len(events) == 0 {
		return
	}
	recordedAt := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	tot := s.totals[id]
	if tot == nil {
		tot = &Totals{}
		s.totals[id] = tot
	}
	seq := uint64(len(s.entries[id]))
	for _, ev := range events {
		seq++
		s.entries[id] = append(s.entries[id], Entry{
			EntryID:    uuid.New().String(),
			Seq:        seq,
			MarketID:   id,
			Event:      ev,
			RecordedAt: recordedAt,
		})
		switch e := ev.(type) {
		case domain.Trade:
			tot.Trades++
			tot.TradedQuantity += e.Qty
		case domain.Maker:
			tot.Makers++
			tot.RestedQuantity += e.Qty
		}
	}
}

// Entries returns all entries for a market in recording order.
// Returns an empty slice if nothing was recorded.
func (s *Tape) Entries(id domain.MarketID) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[id]
	// Return a copy to avoid callers mutating the internal slice.
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result
}

// Totals returns the running aggregates for a market.
func (s *Tape) Totals(id domain.MarketID) Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tot := s.totals[id]; tot != nil {
		return *tot
	}
	return Totals{}
}
