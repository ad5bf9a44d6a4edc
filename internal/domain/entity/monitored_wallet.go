package entity

// MonitoredWallet is a watchlist entry. Address is the identity key.
type MonitoredWallet struct {
	Address      string         `json:"address"`
	Chain        Chain          `json:"chain"`
	LastAnalysis WalletAnalysis `json:"lastAnalysis"`
	IsActive     bool           `json:"isActive"`
	AddedAt      int64          `json:"addedAt"` // epoch millis
}
