package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var symbolRegex = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// MarketID identifies a registered market. Ids are assigned sequentially
// starting at 1; the zero value never names a market.
type MarketID uint64

// Pair is the instrument pair a market trades, e.g. BTC against USD.
type Pair struct {
	Base  string
	Quote string
}

// NewPair upper-cases both symbols and validates them.
func NewPair(base, quote string) (Pair, error) {
	p := Pair{
		Base:  strings.ToUpper(strings.TrimSpace(base)),
		Quote: strings.ToUpper(strings.TrimSpace(quote)),
	}
	for _, f := range [...]struct{ name, sym string }{{"base", p.Base}, {"quote", p.Quote}} {
		if !symbolRegex.MatchString(f.sym) {
			return Pair{}, &ValidationError{
				Field:   f.name,
				Message: fmt.Sprintf("%s symbol %q must be 1-10 letters or digits", f.name, f.sym),
				Err:     ErrInvalidSymbol,
			}
		}
	}
	if p.Base == p.Quote {
		return Pair{}, &ValidationError{
			Field:   "quote",
			Message: fmt.Sprintf("base and quote must differ, got %q twice", p.Base),
			Err:     ErrInvalidSymbol,
		}
	}
	return p, nil
}

// ParsePair parses the "BASE_QUOTE" label produced by String.
func ParsePair(label string) (Pair, error) {
	base, quote, ok := strings.Cut(label, "_")
	if !ok {
		return Pair{}, &ValidationError{
			Field:   "pair",
			Message: fmt.Sprintf("pair %q must look like BASE_QUOTE", label),
			Err:     ErrInvalidSymbol,
		}
	}
	return NewPair(base, quote)
}

func (p Pair) String() string {
	return p.Base + "_" + p.Quote
}
