package engine

import "fmt"

// InvariantError reports internal book corruption. It is raised with
// panic, never returned: a matching engine that keeps going on a corrupt
// book silently misstates financial state.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("orderbook invariant violated (%s): %s", e.Op, e.Detail)
}
