package entity

import "time"

// HoldingsView is what a holdings session renders: the holdings with live
// valuations applied and the aggregate across them.
type HoldingsView struct {
	Holdings      []Holding                 `json:"holdings"`
	TotalValueUSD float64                   `json:"totalValueUSD"`
	LivePrices    map[string]LivePriceEntry `json:"livePrices"`
	LastRefresh   *time.Time                `json:"lastRefresh,omitempty"`
	Updating      bool                      `json:"updating"`
}
