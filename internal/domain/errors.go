package domain

import "errors"

// Sentinel errors for domain-level error handling.
// Callers match them with errors.Is; ValidationError wraps the input ones.
var (
	ErrMarketNotFound  = errors.New("market_not_found")
	ErrInvalidSide     = errors.New("invalid_side")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidSymbol   = errors.New("invalid_symbol")
)

// ValidationError represents a caller input failure. The book state is
// never modified when one is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
