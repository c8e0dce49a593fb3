package engine

import "github.com/efreitasn/matchcore/internal/domain"

// level holds every resting order at one exact price, oldest first.
// A level that is present in a book is never empty.
type level struct {
	price  uint64
	orders []*domain.Order
}

func newLevel(price uint64) *level {
	return &level{price: price}
}

// append queues an order behind everything already resting at this price.
func (l *level) append(o *domain.Order) {
	l.orders = append(l.orders, o)
}

func (l *level) empty() bool {
	return len(l.orders) == 0
}

func (l *level) totalQuantity() uint64 {
	var total uint64
	for _, o := range l.orders {
		total += o.RemainingQuantity
	}
	return total
}

// fill executes up to qty against the resting orders in arrival order,
// appending one Trade per order touched to events. It returns the quantity
// matched and the extended event slice. Fully consumed orders are pruned;
// a partially filled order keeps its place at the front of the queue.
func (l *level) fill(takerID, qty uint64, events []domain.MatchEvent) (uint64, []domain.MatchEvent) {
	remaining := qty
	for _, o := range l.orders {
		if remaining == 0 {
			break
		}
		executed := min(remaining, o.RemainingQuantity)
		o.RemainingQuantity -= executed
		remaining -= executed
		events = append(events, domain.Trade{
			MakerID: o.OrderID,
			TakerID: takerID,
			Price:   l.price,
			Qty:     executed,
		})
	}

	kept := l.orders[:0]
	for _, o := range l.orders {
		if o.RemainingQuantity > 0 {
			kept = append(kept, o)
		}
	}
	// Drop references held by the tail of the backing array.
	for i := len(kept); i < len(l.orders); i++ {
		l.orders[i] = nil
	}
	l.orders = kept

	return qty - remaining, events
}
