package repository

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dusthunter/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStorage struct {
	mu       sync.Mutex
	data     []byte
	readErr  error
	writeErr error
	writes   int
}

func (m *memoryStorage) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.readErr
}

func (m *memoryStorage) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func wallet(address string, score int) entity.MonitoredWallet {
	return entity.MonitoredWallet{
		Address:      address,
		Chain:        entity.ChainEthereum,
		LastAnalysis: entity.WalletAnalysis{Address: address, SafetyScore: score, ThreatLevel: entity.ThreatLevelForScore(score)},
		IsActive:     true,
		AddedAt:      1714557600000,
	}
}

func TestWatchlistStoreAddIsIdempotent(t *testing.T) {
	storage := &memoryStorage{}
	store := NewWatchlistStore(storage, zap.NewNop())

	assert.True(t, store.Add(wallet("0xA", 80)))
	assert.True(t, store.Add(wallet("0xB", 40)))
	assert.False(t, store.Add(wallet("0xA", 10)))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "0xA", list[0].Address)
	assert.Equal(t, 80, list[0].LastAnalysis.SafetyScore)
	assert.Equal(t, "0xB", list[1].Address)
	assert.Equal(t, 2, storage.writes)
}

func TestWatchlistStoreRemove(t *testing.T) {
	storage := &memoryStorage{}
	store := NewWatchlistStore(storage, zap.NewNop())
	store.Add(wallet("0xA", 80))
	store.Add(wallet("0xB", 40))
	store.Add(wallet("0xC", 20))

	assert.True(t, store.Remove("0xB"))
	assert.False(t, store.Remove("0xB"))
	assert.False(t, store.Remove("0xZ"))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "0xA", list[0].Address)
	assert.Equal(t, "0xC", list[1].Address)
	assert.Equal(t, 4, storage.writes)
}

func TestWatchlistStoreRoundTrip(t *testing.T) {
	storage := &memoryStorage{}
	store := NewWatchlistStore(storage, zap.NewNop())
	store.Add(wallet("0xA", 80))
	store.Add(wallet("0xB", 40))

	reloaded := NewWatchlistStore(storage, zap.NewNop())
	loaded := reloaded.Load()
	assert.Equal(t, store.List(), loaded)
}

func TestWatchlistStoreLoadCorruptOrAbsent(t *testing.T) {
	tests := []struct {
		name    string
		storage *memoryStorage
	}{
		{"absent", &memoryStorage{}},
		{"not json", &memoryStorage{data: []byte("not json")}},
		{"object instead of list", &memoryStorage{data: []byte(`{"address":"0xA"}`)}},
		{"null", &memoryStorage{data: []byte(`null`)}},
		{"read error", &memoryStorage{readErr: errors.New("disk gone")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewWatchlistStore(tt.storage, zap.NewNop())
			loaded := store.Load()
			assert.NotNil(t, loaded)
			assert.Empty(t, loaded)
		})
	}
}

func TestWatchlistStorePersistFailureKeepsMemory(t *testing.T) {
	storage := &memoryStorage{writeErr: errors.New("quota exceeded")}
	store := NewWatchlistStore(storage, zap.NewNop())

	assert.True(t, store.Add(wallet("0xA", 80)))
	assert.Len(t, store.List(), 1)
	assert.Nil(t, storage.data)
}

func TestWatchlistStoreUpdateSnapshot(t *testing.T) {
	store := NewWatchlistStore(&memoryStorage{}, zap.NewNop())
	store.Add(wallet("0xA", 80))

	fresh := entity.WalletAnalysis{Address: "0xA", SafetyScore: 15, ThreatLevel: entity.ThreatCritical}
	assert.True(t, store.UpdateSnapshot("0xA", fresh))
	assert.False(t, store.UpdateSnapshot("0xB", fresh))

	got, ok := store.Get("0xA")
	require.True(t, ok)
	assert.Equal(t, 15, got.LastAnalysis.SafetyScore)
	assert.Equal(t, int64(1714557600000), got.AddedAt)
}

func TestWatchlistStoreListIsACopy(t *testing.T) {
	store := NewWatchlistStore(&memoryStorage{}, zap.NewNop())
	store.Add(wallet("0xA", 80))

	list := store.List()
	list[0].Address = "mutated"

	_, ok := store.Get("0xA")
	assert.True(t, ok)
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "watchlist.json")
	storage := NewFileStorage(path)

	data, err := storage.Read()
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, storage.Write([]byte(`[1]`)))
	require.NoError(t, storage.Write([]byte(`[1,2]`)))

	data, err = storage.Read()
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStorageBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	store := NewWatchlistStore(NewFileStorage(path), zap.NewNop())
	store.Add(wallet("So11111111111111111111111111111111111111112", 70))

	reloaded := NewWatchlistStore(NewFileStorage(path), zap.NewNop())
	list := reloaded.Load()
	require.Len(t, list, 1)
	assert.Equal(t, "So11111111111111111111111111111111111111112", list[0].Address)
}
