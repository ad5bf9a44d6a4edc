package entity

import "strings"

// TokenRef identifies a token to price. Symbol is the lookup key.
type TokenRef struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Key returns the uppercased symbol used to key live prices.
func (t TokenRef) Key() string {
	return SymbolKey(t.Symbol)
}

// SymbolKey normalises a ticker symbol for map lookups.
func SymbolKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// LivePriceEntry is one symbol's current market snapshot.
type LivePriceEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}
