package port

import "dusthunter/internal/domain/entity"

// WatchlistRepository is the durable collection of monitored wallets.
type WatchlistRepository interface {
	Load() []entity.MonitoredWallet
	List() []entity.MonitoredWallet
	Get(address string) (entity.MonitoredWallet, bool)
	Add(wallet entity.MonitoredWallet) bool
	Remove(address string) bool
	UpdateSnapshot(address string, analysis entity.WalletAnalysis) bool
}
