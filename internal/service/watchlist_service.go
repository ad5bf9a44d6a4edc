package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dusthunter/internal/app/port"
	"dusthunter/internal/domain/entity"

	"go.uber.org/zap"
)

// ErrWalletNotFound is returned for watchlist operations on an address that is not monitored.
var ErrWalletNotFound = errors.New("wallet is not on the watchlist")

// WatchlistService ties the watchlist store to the analysis uplink.
type WatchlistService struct {
	repo     port.WatchlistRepository
	analysis port.AnalysisService
	logger   *zap.Logger
	now      func() time.Time
}

// NewWatchlistService creates a WatchlistService.
func NewWatchlistService(repo port.WatchlistRepository, analysis port.AnalysisService, logger *zap.Logger) *WatchlistService {
	return &WatchlistService{
		repo:     repo,
		analysis: analysis,
		logger:   logger.Named("WatchlistService"),
		now:      time.Now,
	}
}

// Save starts monitoring the analyzed wallet. Saving an address that is
// already monitored leaves the existing entry untouched; added reports
// which case happened and wallet is the stored entry either way.
func (s *WatchlistService) Save(analysis entity.WalletAnalysis, chain entity.Chain) (wallet entity.MonitoredWallet, added bool, err error) {
	if !chain.IsValid() {
		return entity.MonitoredWallet{}, false, fmt.Errorf("%w: %q", entity.ErrInvalidChain, string(chain))
	}
	address := strings.TrimSpace(analysis.Address)
	if address == "" {
		return entity.MonitoredWallet{}, false, fmt.Errorf("%w: analysis has no address", entity.ErrInvalidAddress)
	}
	if err := chain.ValidateAddress(address); err != nil {
		return entity.MonitoredWallet{}, false, err
	}
	analysis.Address = address

	wallet = entity.MonitoredWallet{
		Address:      address,
		Chain:        chain,
		LastAnalysis: analysis,
		IsActive:     true,
		AddedAt:      s.now().UnixMilli(),
	}
	if !s.repo.Add(wallet) {
		existing, _ := s.repo.Get(address)
		return existing, false, nil
	}
	s.logger.Info("Wallet added to watchlist", zap.String("address", address), zap.String("chain", string(chain)))
	return wallet, true, nil
}

// Remove stops monitoring address. Removing an unknown address returns ErrWalletNotFound.
func (s *WatchlistService) Remove(address string) error {
	if !s.repo.Remove(strings.TrimSpace(address)) {
		return ErrWalletNotFound
	}
	s.logger.Info("Wallet removed from watchlist", zap.String("address", address))
	return nil
}

// List returns the monitored wallets in insertion order.
func (s *WatchlistService) List() []entity.MonitoredWallet {
	return s.repo.List()
}

// Reanalyze runs a fresh uplink for a monitored wallet with its stored
// chain. On success the stored snapshot is replaced; on failure it is kept.
func (s *WatchlistService) Reanalyze(ctx context.Context, address string) (*entity.WalletAnalysis, error) {
	address = strings.TrimSpace(address)
	wallet, ok := s.repo.Get(address)
	if !ok {
		return nil, ErrWalletNotFound
	}

	analysis, err := s.analysis.Analyze(ctx, wallet.Address, wallet.Chain)
	if err != nil {
		return nil, err
	}
	// The model may echo a differently formatted address; the entry key stays.
	analysis.Address = wallet.Address
	if !s.repo.UpdateSnapshot(wallet.Address, *analysis) {
		s.logger.Warn("Wallet removed during reanalysis, snapshot discarded", zap.String("address", wallet.Address))
	}
	return analysis, nil
}
