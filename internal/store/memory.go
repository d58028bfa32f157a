package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("no weather data for location")

// SnapshotHistory is one location's snapshots, ordered by FetchedAt.
type SnapshotHistory struct {
	Snapshots []weather.WeatherSnapshot
}

// insert places snap by fetch time. A snapshot with the same ID replaces the old one.
func (h *SnapshotHistory) insert(snap weather.WeatherSnapshot) {
	for i := range h.Snapshots {
		if h.Snapshots[i].ID == snap.ID {
			h.Snapshots = append(h.Snapshots[:i], h.Snapshots[i+1:]...)
			break
		}
	}

	i := sort.Search(len(h.Snapshots), func(i int) bool {
		return h.Snapshots[i].FetchedAt.After(snap.FetchedAt)
	})
	h.Snapshots = append(h.Snapshots, weather.WeatherSnapshot{})
	copy(h.Snapshots[i+1:], h.Snapshots[i:])
	h.Snapshots[i] = snap
}

// prune drops the oldest entries beyond maxHistory and those fetched before
// cutoff. The newest snapshot always survives.
func (h *SnapshotHistory) prune(maxHistory int, cutoff time.Time) {
	drop := 0
	if maxHistory > 0 && len(h.Snapshots) > maxHistory {
		drop = len(h.Snapshots) - maxHistory
	}
	if !cutoff.IsZero() {
		for drop < len(h.Snapshots)-1 && h.Snapshots[drop].FetchedAt.Before(cutoff) {
			drop++
		}
	}
	if drop > 0 {
		h.Snapshots = append([]weather.WeatherSnapshot(nil), h.Snapshots[drop:]...)
	}
}

// between returns the snapshots fetched in [from, to].
func (h *SnapshotHistory) between(from, to time.Time) []weather.WeatherSnapshot {
	lo := sort.Search(len(h.Snapshots), func(i int) bool {
		return !h.Snapshots[i].FetchedAt.Before(from)
	})
	hi := sort.Search(len(h.Snapshots), func(i int) bool {
		return h.Snapshots[i].FetchedAt.After(to)
	})
	if lo >= hi {
		return nil
	}
	return append([]weather.WeatherSnapshot(nil), h.Snapshots[lo:hi]...)
}

// MemoryStore keeps snapshot histories in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*SnapshotHistory // by Location.Key()

	maxHistory int
	maxAge     time.Duration
	now        func() time.Time
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore. A maxHistory or maxAge <= 0 disables that limit.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot records snapshot under loc and applies retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) error {
	var cutoff time.Time
	if s.maxAge > 0 {
		cutoff = s.now().Add(-s.maxAge)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.data[loc.Key()]
	if !ok {
		h = &SnapshotHistory{}
		s.data[loc.Key()] = h
	}
	h.insert(snapshot)
	h.prune(s.maxHistory, cutoff)
	return nil
}

// GetLatest returns the most recently fetched snapshot for loc.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[loc.Key()]
	if !ok || len(h.Snapshots) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return h.Snapshots[len(h.Snapshots)-1], nil
}

// GetRange returns the snapshots for loc fetched between from and to (inclusive), oldest first.
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[loc.Key()]
	if !ok {
		return nil, ErrNotFound
	}
	out := h.between(from, to)
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
