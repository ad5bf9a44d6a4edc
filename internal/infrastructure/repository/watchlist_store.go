package repository

import (
	"strings"
	"sync"

	"dusthunter/internal/app/port"
	"dusthunter/internal/domain/entity"
	"dusthunter/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WatchlistStore implements port.WatchlistRepository. The in-memory list is
// authoritative; every mutation writes the whole list to storage.
type WatchlistStore struct {
	storage Storage
	logger  *zap.Logger

	mu      sync.RWMutex
	wallets []entity.MonitoredWallet
}

var _ port.WatchlistRepository = (*WatchlistStore)(nil)

// NewWatchlistStore creates an empty store. Call Load to read persisted entries.
func NewWatchlistStore(storage Storage, logger *zap.Logger) *WatchlistStore {
	return &WatchlistStore{
		storage: storage,
		logger:  logger.Named("WatchlistStore"),
		wallets: []entity.MonitoredWallet{},
	}
}

// Load replaces the in-memory list with the persisted one. An absent slot or
// content that does not decode as a list yields an empty watchlist.
func (s *WatchlistStore) Load() []entity.MonitoredWallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets = s.readAll()
	metrics.WatchlistSize.Set(float64(len(s.wallets)))
	s.logger.Info("Watchlist loaded", zap.Int("count", len(s.wallets)))
	return cloneWallets(s.wallets)
}

func (s *WatchlistStore) readAll() []entity.MonitoredWallet {
	data, err := s.storage.Read()
	if err != nil {
		s.logger.Error("Failed to read watchlist, starting empty", zap.Error(err))
		return []entity.MonitoredWallet{}
	}
	if len(data) == 0 {
		return []entity.MonitoredWallet{}
	}

	var wallets []entity.MonitoredWallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		s.logger.Error("Watchlist storage is corrupt, starting empty", zap.Error(err))
		return []entity.MonitoredWallet{}
	}
	if wallets == nil {
		return []entity.MonitoredWallet{}
	}
	return wallets
}

// List returns a copy of the watchlist in insertion order.
func (s *WatchlistStore) List() []entity.MonitoredWallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWallets(s.wallets)
}

// Get looks up an entry by address.
func (s *WatchlistStore) Get(address string) (entity.MonitoredWallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.wallets, func(w entity.MonitoredWallet) bool {
		return sameAddress(w.Address, address)
	})
}

// Add appends wallet unless its address is already present. It reports
// whether the list changed.
func (s *WatchlistStore) Add(wallet entity.MonitoredWallet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(wallet.Address) >= 0 {
		s.logger.Debug("Wallet already monitored", zap.String("address", wallet.Address))
		return false
	}
	s.wallets = append(s.wallets, wallet)
	s.persistLocked()
	return true
}

// Remove drops the entry with address. It reports whether the list changed.
func (s *WatchlistStore) Remove(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(address)
	if i < 0 {
		return false
	}
	s.wallets = append(s.wallets[:i:i], s.wallets[i+1:]...)
	s.persistLocked()
	return true
}

// UpdateSnapshot replaces the stored analysis of address.
func (s *WatchlistStore) UpdateSnapshot(address string, analysis entity.WalletAnalysis) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(address)
	if i < 0 {
		return false
	}
	s.wallets[i].LastAnalysis = analysis
	s.persistLocked()
	return true
}

func (s *WatchlistStore) indexOf(address string) int {
	_, i, ok := lo.FindIndexOf(s.wallets, func(w entity.MonitoredWallet) bool {
		return sameAddress(w.Address, address)
	})
	if !ok {
		return -1
	}
	return i
}

// persistLocked writes the full list. A failed write is logged and the
// in-memory list stays as it is.
func (s *WatchlistStore) persistLocked() {
	metrics.WatchlistSize.Set(float64(len(s.wallets)))

	data, err := json.Marshal(s.wallets)
	if err != nil {
		metrics.WatchlistPersistFailures.Inc()
		s.logger.Error("Failed to encode watchlist", zap.Error(err))
		return
	}
	if err := s.storage.Write(data); err != nil {
		metrics.WatchlistPersistFailures.Inc()
		s.logger.Error("Failed to persist watchlist", zap.Int("count", len(s.wallets)), zap.Error(err))
	}
}

// sameAddress compares addresses exactly after trimming. Base58 and bech32
// addresses are case sensitive so no case folding is done.
func sameAddress(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func cloneWallets(wallets []entity.MonitoredWallet) []entity.MonitoredWallet {
	out := make([]entity.MonitoredWallet, len(wallets))
	copy(out, wallets)
	return out
}
