package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/matchcore/internal/domain"
)

func TestTape_AppendKeepsOrderAndSequence(t *testing.T) {
	s := NewTape()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Append(1, domain.Maker{ID: 1, Price: 50000, Qty: 2, Side: domain.OrderSideAsk})
	s.Append(1,
		domain.Trade{MakerID: 1, TakerID: 3, Price: 50000, Qty: 1},
		domain.Maker{ID: 3, Price: 50000, Qty: 1, Side: domain.OrderSideBid},
	)

	entries := s.Entries(1)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, domain.MarketID(1), e.MarketID)
		assert.Equal(t, fixed, e.RecordedAt)
		assert.NotEmpty(t, e.EntryID)
	}
	assert.IsType(t, domain.Trade{}, entries[1].Event)
	assert.NotEqual(t, entries[0].EntryID, entries[1].EntryID)

	tot := s.Totals(1)
	assert.Equal(t, Totals{Trades: 1, TradedQuantity: 1, Makers: 2, RestedQuantity: 3}, tot)
}

func TestTape_EmptyMarket(t *testing.T) {
	s := NewTape()
	s.Append(7)

	entries := s.Entries(7)
	require.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Equal(t, Totals{}, s.Totals(7))
}

func TestTape_EntriesReturnsCopy(t *testing.T) {
	s := NewTape()
	s.Append(1, domain.Trade{MakerID: 1, TakerID: 2, Price: 10, Qty: 1})

	entries := s.Entries(1)
	entries[0].Seq = 99

	assert.Equal(t, uint64(1), s.Entries(1)[0].Seq)
}

func TestTape_MarketsAreSeparate(t *testing.T) {
	s := NewTape()
	s.Append(1, domain.Trade{MakerID: 1, TakerID: 2, Price: 10, Qty: 4})
	s.Append(2, domain.Trade{MakerID: 1, TakerID: 2, Price: 20, Qty: 6})

	assert.Equal(t, uint64(4), s.Totals(1).TradedQuantity)
	assert.Equal(t, uint64(6), s.Totals(2).TradedQuantity)
	assert.Equal(t, uint64(1), s.Entries(2)[0].Seq)
}

func TestTape_ConcurrentAppend(t *testing.T) {
	s := NewTape()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(1, domain.Trade{MakerID: 1, TakerID: 2, Price: 10, Qty: 1})
		}()
	}
	wg.Wait()

	entries := s.Entries(1)
	require.Len(t, entries, 50)
	for i, e := range entries {
		assert.Equal(t, uint64(i+1), e.Seq)
	}
	assert.Equal(t, 50, s.Totals(1).Trades)
}
