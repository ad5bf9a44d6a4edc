package service

import (
	"dusthunter/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// Reprice returns a new slice where every holding with a live price carries
// price × balance as its USD value and the live 24h change. Holdings without
// a live entry keep the valuation they arrived with. The input is not modified.
func Reprice(holdings []entity.Holding, live map[string]entity.LivePriceEntry) []entity.Holding {
	out := make([]entity.Holding, len(holdings))
	for i, h := range holdings {
		out[i] = h
		entry, ok := live[entity.SymbolKey(h.Symbol)]
		if !ok {
			continue
		}
		out[i].USDValue = decimal.NewFromFloat(entry.Price).Mul(h.Balance.Amount).InexactFloat64()
		out[i].Change24h = entry.Change24h
	}
	return out
}

// TotalValue sums the USD value of the holdings.
func TotalValue(holdings []entity.Holding) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(decimal.NewFromFloat(h.USDValue))
	}
	return total.InexactFloat64()
}
