package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dusthunter/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedOracle returns a fixed price per symbol and can hold passes until released.
type scriptedOracle struct {
	mu      sync.Mutex
	prices  map[string]entity.LivePriceEntry
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newScriptedOracle(prices map[string]entity.LivePriceEntry) *scriptedOracle {
	return &scriptedOracle{prices: prices, started: make(chan struct{}, 16)}
}

func (o *scriptedOracle) setPrices(prices map[string]entity.LivePriceEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices = prices
}

func (o *scriptedOracle) RefreshPrices(_ context.Context, tokens []entity.TokenRef) map[string]entity.LivePriceEntry {
	o.calls.Add(1)
	select {
	case o.started <- struct{}{}:
	default:
	}
	if o.release != nil {
		<-o.release
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]entity.LivePriceEntry)
	for _, t := range tokens {
		if e, ok := o.prices[t.Key()]; ok {
			out[t.Key()] = e
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func ethHoldings() []entity.Holding {
	return []entity.Holding{{Name: "Ether", Symbol: "ETH", Balance: entity.ParseBalance("1,234.56 ETH"), USDValue: 10}}
}

func TestReconcilerImmediatePass(t *testing.T) {
	oracle := newScriptedOracle(map[string]entity.LivePriceEntry{"ETH": {Symbol: "ETH", Price: 3000, Change24h: 1}})
	r := NewReconciler(oracle, time.Hour, zap.NewNop())

	r.Activate(ethHoldings())
	defer r.Deactivate()

	waitFor(t, func() bool { return r.Snapshot().LastRefresh != nil })
	view := r.Snapshot()
	assert.Equal(t, 3703680.0, view.Holdings[0].USDValue)
	assert.Equal(t, 3703680.0, view.TotalValueUSD)
	assert.Contains(t, view.LivePrices, "ETH")
	assert.False(t, view.Updating)
	assert.EqualValues(t, 1, oracle.calls.Load())
}

func TestReconcilerTicks(t *testing.T) {
	oracle := newScriptedOracle(map[string]entity.LivePriceEntry{"ETH": {Symbol: "ETH", Price: 3000}})
	r := NewReconciler(oracle, 20*time.Millisecond, zap.NewNop())

	r.Activate(ethHoldings())
	waitFor(t, func() bool { return oracle.calls.Load() >= 3 })
	r.Deactivate()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after Deactivate")
	}
}

func TestReconcilerFailedSymbolKeepsPreviousPrice(t *testing.T) {
	oracle := newScriptedOracle(map[string]entity.LivePriceEntry{"ETH": {Symbol: "ETH", Price: 3000}})
	r := NewReconciler(oracle, 20*time.Millisecond, zap.NewNop())

	r.Activate(ethHoldings())
	defer r.Deactivate()
	waitFor(t, func() bool { return r.Snapshot().LastRefresh != nil })

	oracle.setPrices(map[string]entity.LivePriceEntry{})
	calls := oracle.calls.Load()
	waitFor(t, func() bool { return oracle.calls.Load() > calls+1 })

	view := r.Snapshot()
	assert.Equal(t, 3000.0, view.LivePrices["ETH"].Price)
	assert.Equal(t, 3703680.0, view.Holdings[0].USDValue)
}

func TestReconcilerDropsResultsAfterDeactivate(t *testing.T) {
	oracle := newScriptedOracle(map[string]entity.LivePriceEntry{"ETH": {Symbol: "ETH", Price: 3000}})
	oracle.release = make(chan struct{})
	r := NewReconciler(oracle, time.Hour, zap.NewNop())

	r.Activate(ethHoldings())
	<-oracle.started
	assert.True(t, r.Snapshot().Updating)

	r.Deactivate()
	close(oracle.release)
	<-r.Done()

	view := r.Snapshot()
	assert.Empty(t, view.LivePrices)
	assert.Empty(t, view.Holdings)
	assert.Nil(t, view.LastRefresh)
}

func TestReconcilerDropsResultsOfReplacedHoldings(t *testing.T) {
	oracle := newScriptedOracle(map[string]entity.LivePriceEntry{
		"ETH": {Symbol: "ETH", Price: 3000},
		"SOL": {Symbol: "SOL", Price: 150},
	})
	oracle.release = make(chan struct{})
	r := NewReconciler(oracle, time.Hour, zap.NewNop())
	defer r.Deactivate()

	r.Activate(ethHoldings())
	<-oracle.started
	first := r.Done()

	r.Activate([]entity.Holding{{Symbol: "SOL", Balance: entity.ParseBalance("2 SOL")}})
	close(oracle.release)
	<-first
	waitFor(t, func() bool { return r.Snapshot().LastRefresh != nil })

	view := r.Snapshot()
	assert.NotContains(t, view.LivePrices, "ETH")
	assert.Equal(t, 300.0, view.TotalValueUSD)
}
