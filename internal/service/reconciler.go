package service

import (
	"context"
	"sync"
	"time"

	"dusthunter/internal/app/port"
	"dusthunter/internal/domain/entity"
	"dusthunter/internal/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Reconciler keeps the valuations of one mounted holdings set live. Every
// Activate or Deactivate starts a new generation; a pass only applies its
// prices if its generation is still current, so results of a superseded
// holdings set are dropped even when their requests complete later.
type Reconciler struct {
	prices   port.TokenPriceService
	interval time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	generation  uint64
	holdings    []entity.Holding
	book        *cache.Cache // uppercased symbol -> entity.LivePriceEntry
	cancel      context.CancelFunc
	done        chan struct{}
	lastRefresh time.Time
	updating    bool
}

// NewReconciler creates an inactive reconciler.
func NewReconciler(prices port.TokenPriceService, interval time.Duration, logger *zap.Logger) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	done := make(chan struct{})
	close(done)
	return &Reconciler{
		prices:   prices,
		interval: interval,
		logger:   logger.Named("Reconciler"),
		book:     cache.New(cache.NoExpiration, 0),
		done:     done,
	}
}

// Activate mounts holdings: one pass runs immediately, then one per interval
// until Deactivate or the next Activate.
func (r *Reconciler) Activate(holdings []entity.Holding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.generation++
	gen := r.generation
	r.holdings = append([]entity.Holding(nil), holdings...)
	r.book.Flush()
	r.lastRefresh = time.Time{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	refs := lo.Map(r.holdings, func(h entity.Holding, _ int) entity.TokenRef { return h.Ref() })
	r.logger.Info("Holdings activated", zap.Uint64("generation", gen), zap.Int("holdings", len(refs)))
	go r.run(ctx, gen, refs, done)
}

// Deactivate cancels the schedule. It does not wait for an in-flight pass;
// whatever that pass returns is discarded.
func (r *Reconciler) Deactivate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.generation++
	r.holdings = nil
	r.book.Flush()
	r.updating = false
	r.logger.Info("Holdings deactivated", zap.Uint64("generation", r.generation))
}

// Done is closed once the loop of the latest generation has exited.
func (r *Reconciler) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Snapshot returns the mounted holdings repriced with the live price book.
func (r *Reconciler) Snapshot() entity.HoldingsView {
	r.mu.Lock()
	holdings := r.holdings
	live := make(map[string]entity.LivePriceEntry, r.book.ItemCount())
	for symbol, item := range r.book.Items() {
		if entry, ok := item.Object.(entity.LivePriceEntry); ok {
			live[symbol] = entry
		}
	}
	var lastRefresh *time.Time
	if !r.lastRefresh.IsZero() {
		t := r.lastRefresh
		lastRefresh = &t
	}
	updating := r.updating
	r.mu.Unlock()

	repriced := Reprice(holdings, live)
	return entity.HoldingsView{
		Holdings:      repriced,
		TotalValueUSD: TotalValue(repriced),
		LivePrices:    live,
		LastRefresh:   lastRefresh,
		Updating:      updating,
	}
}

func (r *Reconciler) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Reconciler) run(ctx context.Context, gen uint64, refs []entity.TokenRef, done chan struct{}) {
	defer close(done)

	r.pass(ctx, gen, refs)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx, gen, refs)
		}
	}
}

func (r *Reconciler) pass(ctx context.Context, gen uint64, refs []entity.TokenRef) {
	if len(refs) == 0 {
		return
	}
	r.mu.Lock()
	if gen == r.generation {
		r.updating = true
	}
	r.mu.Unlock()

	start := time.Now()
	prices := r.prices.RefreshPrices(ctx, refs)
	metrics.ReconciliationDuration.Observe(time.Since(start).Seconds())

	if !r.apply(gen, prices) {
		metrics.ReconciliationPasses.WithLabelValues("stale").Inc()
		r.logger.Debug("Dropped prices of a superseded generation", zap.Uint64("generation", gen), zap.Int("prices", len(prices)))
		return
	}
	metrics.ReconciliationPasses.WithLabelValues("applied").Inc()
}

// apply merges prices into the book when gen is still current. Symbols that
// failed this pass keep their previous entry.
func (r *Reconciler) apply(gen uint64, prices map[string]entity.LivePriceEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		return false
	}
	for symbol, entry := range prices {
		r.book.Set(symbol, entry, cache.NoExpiration)
	}
	r.lastRefresh = time.Now()
	r.updating = false
	return true
}
