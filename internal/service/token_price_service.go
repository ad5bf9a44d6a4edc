package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dusthunter/internal/app/port"
	"dusthunter/internal/client"
	"dusthunter/internal/domain/entity"
	dexscreener_entity "dusthunter/internal/entity"
	"dusthunter/internal/pkg/metrics"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	errNoPairs  = errors.New("no pairs returned for symbol")
	errBadPrice = errors.New("best pair has no usable USD price")
)

// tokenPriceServiceImpl implements port.TokenPriceService on top of DEX Screener search.
type tokenPriceServiceImpl struct {
	logger            *zap.Logger
	dexscreenerClient client.DEXScreenerClient
	maxConcurrent     int
}

// NewTokenPriceService creates a new instance of TokenPriceService.
// maxConcurrent <= 0 means one goroutine per symbol.
func NewTokenPriceService(logger *zap.Logger, dexscreenerClient client.DEXScreenerClient, maxConcurrent int) port.TokenPriceService {
	return &tokenPriceServiceImpl{
		logger:            logger.Named("TokenPriceService"),
		dexscreenerClient: dexscreenerClient,
		maxConcurrent:     maxConcurrent,
	}
}

// RefreshPrices implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) RefreshPrices(ctx context.Context, tokens []entity.TokenRef) map[string]entity.LivePriceEntry {
	results := make(map[string]entity.LivePriceEntry, len(tokens))
	if len(tokens) == 0 {
		return results
	}

	// Querying one symbol twice gives the same answer; ask once per key.
	unique := lo.UniqBy(lo.Filter(tokens, func(t entity.TokenRef, _ int) bool {
		return t.Key() != ""
	}), func(t entity.TokenRef) string {
		return t.Key()
	})

	start := time.Now()
	var mu sync.Mutex
	var g errgroup.Group
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}

	for _, token := range unique {
		g.Go(func() error {
			entry, err := s.fetchLivePrice(ctx, token)
			if err != nil {
				s.logger.Warn("Failed to fetch live price",
					zap.String("symbol", token.Symbol),
					zap.String("name", token.Name),
					zap.Error(err))
				metrics.PriceFetches.WithLabelValues(failureOutcome(err)).Inc()
				return nil // one symbol never aborts the batch
			}
			metrics.PriceFetches.WithLabelValues("ok").Inc()

			mu.Lock()
			results[entry.Symbol] = entry
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("Reconciliation pass settled",
		zap.Int("requested", len(unique)),
		zap.Int("priced", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func (s *tokenPriceServiceImpl) fetchLivePrice(ctx context.Context, token entity.TokenRef) (entity.LivePriceEntry, error) {
	pairs, err := s.dexscreenerClient.SearchPairs(ctx, token.Symbol)
	if err != nil {
		return entity.LivePriceEntry{}, err
	}
	if len(pairs) == 0 {
		return entity.LivePriceEntry{}, errNoPairs
	}

	best := selectBestPair(pairs)
	price, err := decimal.NewFromString(best.PriceUsd)
	if err != nil || !price.IsPositive() {
		return entity.LivePriceEntry{}, fmt.Errorf("%w: pair %s priceUsd=%q", errBadPrice, best.PairAddress, best.PriceUsd)
	}

	s.logger.Debug("Selected best pair by liquidity",
		zap.String("symbol", token.Key()),
		zap.String("pairAddress", best.PairAddress),
		zap.String("dexId", best.DexID),
		zap.String("priceUsd", best.PriceUsd),
		zap.Float64("liquidityUsd", best.LiquidityUSD()),
		zap.String("quoteToken", best.QuoteToken.Symbol))

	return entity.LivePriceEntry{
		Symbol:    token.Key(),
		Price:     price.InexactFloat64(),
		Change24h: best.PriceChange.H24,
	}, nil
}

// selectBestPair returns the pair with the highest USD liquidity. Among equal
// liquidity the earliest pair in response order wins. pairs must be non-empty.
func selectBestPair(pairs []dexscreener_entity.PairData) dexscreener_entity.PairData {
	return lo.MaxBy(pairs, func(a, b dexscreener_entity.PairData) bool {
		return a.LiquidityUSD() > b.LiquidityUSD()
	})
}

func failureOutcome(err error) string {
	switch {
	case errors.Is(err, errNoPairs), errors.Is(err, client.ErrMissingPairs):
		return "no_pairs"
	case errors.Is(err, errBadPrice):
		return "bad_price"
	default:
		return "error"
	}
}
