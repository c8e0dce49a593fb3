package domain

import (
	"fmt"
	"strings"
)

// OrderSide indicates whether an order is a bid (buy) or ask (sell).
type OrderSide string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"
)

// Valid reports whether s is one of the two known sides.
func (s OrderSide) Valid() bool {
	return s == OrderSideBid || s == OrderSideAsk
}

// Opposite returns the side an order of side s matches against.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBid {
		return OrderSideAsk
	}
	return OrderSideBid
}

func (s OrderSide) String() string {
	return string(s)
}

// ParseOrderSide accepts "bid"/"buy" and "ask"/"sell", case-insensitively.
func ParseOrderSide(v string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bid", "buy":
		return OrderSideBid, nil
	case "ask", "sell":
		return OrderSideAsk, nil
	}
	return "", &ValidationError{
		Field:   "side",
		Message: fmt.Sprintf("Unknown side: %q. Must be one of: bid, ask", v),
		Err:     ErrInvalidSide,
	}
}

// Order is a single resting or incoming quantity request. Price is in
// integer ticks and never changes once the order rests; RemainingQuantity
// only ever decreases.
type Order struct {
	OrderID           uint64
	Side              OrderSide
	Price             uint64
	RemainingQuantity uint64
}

// NewOrder builds an order after validating side, price and quantity.
func NewOrder(id uint64, side OrderSide, price, quantity uint64) (*Order, error) {
	if err := ValidateLimitOrder(side, price, quantity); err != nil {
		return nil, err
	}
	return &Order{
		OrderID:           id,
		Side:              side,
		Price:             price,
		RemainingQuantity: quantity,
	}, nil
}

// ValidateLimitOrder checks the caller-supplied fields of a limit order.
func ValidateLimitOrder(side OrderSide, price, quantity uint64) error {
	if !side.Valid() {
		return &ValidationError{
			Field:   "side",
			Message: fmt.Sprintf("Unknown side: %q. Must be one of: bid, ask", side),
			Err:     ErrInvalidSide,
		}
	}
	if price == 0 {
		return &ValidationError{Field: "price", Message: "price must be greater than zero", Err: ErrInvalidPrice}
	}
	if quantity == 0 {
		return &ValidationError{Field: "quantity", Message: "quantity must be greater than zero", Err: ErrInvalidQuantity}
	}
	return nil
}
