package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

var paris = weather.Location{City: "Paris", Country: "FR"}

func snapshotAt(id string, ts time.Time) weather.WeatherSnapshot {
	return weather.WeatherSnapshot{ID: id, Location: paris, FetchedAt: ts, Temperature: 12}
}

func TestMemoryStoreLatestAndRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := s.GetLatest(paris); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.SaveSnapshot(paris, snapshotAt(fmt.Sprint(i), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	latest, err := s.GetLatest(paris)
	if err != nil || latest.ID != "2" {
		t.Fatalf("expected latest id 2, got %+v (%v)", latest, err)
	}

	got, err := s.GetRange(paris, base, base.Add(time.Hour))
	if err != nil || len(got) != 2 {
		t.Fatalf("expected 2 snapshots in range, got %d (%v)", len(got), err)
	}

	if _, err := s.GetRange(paris, base.Add(10*time.Hour), base.Add(11*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_ = s.SaveSnapshot(paris, snapshotAt(fmt.Sprint(i), base.Add(time.Duration(i)*time.Minute)))
	}

	got, err := s.GetRange(paris, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "4" {
		t.Fatalf("expected the two newest snapshots, got %+v", got)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, 24*time.Hour)
	s.now = func() time.Time { return now }

	_ = s.SaveSnapshot(paris, snapshotAt("old", now.Add(-48*time.Hour)))
	_ = s.SaveSnapshot(paris, snapshotAt("fresh", now.Add(-time.Hour)))

	got, err := s.GetRange(paris, now.Add(-72*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("expected only the fresh snapshot, got %+v", got)
	}

	// A lone stale snapshot is still kept as the latest known value.
	other := weather.Location{City: "Oslo"}
	_ = s.SaveSnapshot(other, snapshotAt("stale", now.Add(-72*time.Hour)))
	if latest, err := s.GetLatest(other); err != nil || latest.ID != "stale" {
		t.Fatalf("expected stale snapshot to be kept, got %+v (%v)", latest, err)
	}
}

func TestMemoryStoreOrdersByFetchTime(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	_ = s.SaveSnapshot(paris, snapshotAt("late", base.Add(2*time.Hour)))
	_ = s.SaveSnapshot(paris, snapshotAt("early", base))
	_ = s.SaveSnapshot(paris, snapshotAt("mid", base.Add(time.Hour)))

	latest, err := s.GetLatest(paris)
	if err != nil || latest.ID != "late" {
		t.Fatalf("expected late snapshot as latest, got %+v (%v)", latest, err)
	}

	// Same ID replaces the stored snapshot.
	replaced := snapshotAt("mid", base.Add(time.Hour))
	replaced.Temperature = 30
	_ = s.SaveSnapshot(paris, replaced)

	got, err := s.GetRange(paris, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0].ID != "early" || got[1].ID != "mid" || got[2].ID != "late" {
		t.Fatalf("expected early, mid, late; got %+v", got)
	}
	if got[1].Temperature != 30 {
		t.Fatalf("expected replaced snapshot, got %+v", got[1])
	}
}
