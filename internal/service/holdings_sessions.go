package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"dusthunter/internal/app/port"
	"dusthunter/internal/domain/entity"
	"dusthunter/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = errors.New("holdings session not found")
	ErrTooManySessions   = errors.New("too many active holdings sessions")
	ErrNoHoldingsToTrack = errors.New("holdings session needs at least one holding")
)

// HoldingsSessions is the registry of mounted holdings views, one Reconciler each.
// A session that is not read or replaced within the idle timeout is evicted
// and its reconciler deactivated.
type HoldingsSessions struct {
	prices      port.TokenPriceService
	interval    time.Duration
	maxSessions int
	logger      *zap.Logger

	// mu serializes the limit check in Open with inserts and explicit closes.
	mu       sync.Mutex
	sessions *cache.Cache
}

// NewHoldingsSessions creates an empty registry. idleTimeout <= 0 keeps
// sessions until they are closed; maxSessions <= 0 means unbounded.
func NewHoldingsSessions(prices port.TokenPriceService, interval, idleTimeout time.Duration, maxSessions int, logger *zap.Logger) *HoldingsSessions {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if idleTimeout > 0 {
		expiration, cleanup = idleTimeout, idleTimeout/2
	}
	s := &HoldingsSessions{
		prices:      prices,
		interval:    interval,
		maxSessions: maxSessions,
		logger:      logger,
		sessions:    cache.New(expiration, cleanup),
	}
	s.sessions.OnEvicted(s.evicted)
	return s
}

// evicted runs for explicit closes and idle expiry alike, outside the cache lock.
func (s *HoldingsSessions) evicted(id string, v interface{}) {
	if r, ok := v.(*Reconciler); ok {
		r.Deactivate()
	}
	metrics.ActiveSessions.Set(float64(s.sessions.ItemCount()))
	s.logger.Debug("Holdings session closed", zap.String("session", id))
}

// Open activates a reconciler for holdings and returns its session id.
func (s *HoldingsSessions) Open(holdings []entity.Holding) (string, error) {
	if len(holdings) == 0 {
		return "", ErrNoHoldingsToTrack
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Idle sessions the janitor has not reached yet must not hold a slot.
	s.sessions.DeleteExpired()
	if s.maxSessions > 0 && s.sessions.ItemCount() >= s.maxSessions {
		return "", fmt.Errorf("%w (limit %d)", ErrTooManySessions, s.maxSessions)
	}

	id := uuid.NewString()
	r := NewReconciler(s.prices, s.interval, s.logger.With(zap.String("session", id)))
	r.Activate(holdings)
	s.sessions.Set(id, r, cache.DefaultExpiration)
	metrics.ActiveSessions.Set(float64(s.sessions.ItemCount()))
	return id, nil
}

// Replace re-activates an existing session with a new holdings set.
func (s *HoldingsSessions) Replace(id string, holdings []entity.Holding) error {
	if len(holdings) == 0 {
		return ErrNoHoldingsToTrack
	}
	r, err := s.touch(id)
	if err != nil {
		return err
	}
	r.Activate(holdings)
	return nil
}

// Get returns the live view of a session and keeps it alive for another idle period.
func (s *HoldingsSessions) Get(id string) (entity.HoldingsView, error) {
	r, err := s.touch(id)
	if err != nil {
		return entity.HoldingsView{}, err
	}
	return r.Snapshot(), nil
}

// Close deactivates and forgets a session.
func (s *HoldingsSessions) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.sessions.Delete(id)
	return nil
}

// CloseAll deactivates every session and waits up to timeout for their loops to exit.
func (s *HoldingsSessions) CloseAll(timeout time.Duration) {
	s.mu.Lock()
	s.sessions.DeleteExpired()
	all := s.sessions.Items()
	// Flush skips OnEvicted, the loops are stopped below.
	s.sessions.Flush()
	metrics.ActiveSessions.Set(0)
	s.mu.Unlock()

	deadline := time.After(timeout)
	for id, item := range all {
		r := item.Object.(*Reconciler)
		r.Deactivate()
		select {
		case <-r.Done():
		case <-deadline:
			s.logger.Warn("Timed out waiting for reconcilers to stop", zap.String("session", id))
			return
		}
	}
}

// Count returns the number of open sessions.
func (s *HoldingsSessions) Count() int {
	s.sessions.DeleteExpired()
	return s.sessions.ItemCount()
}

// touch looks a session up and restarts its idle timer.
func (s *HoldingsSessions) touch(id string) (*Reconciler, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Replace fails if the entry expired or was closed in between.
	if err := s.sessions.Replace(id, v, cache.DefaultExpiration); err != nil {
		return nil, ErrSessionNotFound
	}
	return v.(*Reconciler), nil
}
