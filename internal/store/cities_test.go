package store

import (
	"reflect"
	"testing"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

func cityNames(locs []weather.Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.City)
	}
	return out
}

func TestCityListAddSkipsDuplicates(t *testing.T) {
	l := NewCityList([]weather.Location{{City: "Paris", Country: "FR"}, {City: " "}, {City: "paris", Country: "fr"}})
	if got := cityNames(l.List()); !reflect.DeepEqual(got, []string{"Paris"}) {
		t.Fatalf("unexpected seed %v", got)
	}

	if !l.Add(weather.Location{City: "Oslo"}) {
		t.Fatal("expected Oslo to be added")
	}
	if l.Add(weather.Location{City: "OSLO "}) {
		t.Fatal("expected duplicate to be rejected")
	}
	if got := cityNames(l.List()); !reflect.DeepEqual(got, []string{"Paris", "Oslo"}) {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestCityListRemove(t *testing.T) {
	l := NewCityList([]weather.Location{{City: "Paris"}, {City: "Oslo"}, {City: "Lima"}})
	if !l.Remove(weather.Location{City: "oslo"}) {
		t.Fatal("expected Oslo to be removed")
	}
	if l.Remove(weather.Location{City: "Tokyo"}) {
		t.Fatal("expected unknown city not to be removed")
	}
	if got := cityNames(l.List()); !reflect.DeepEqual(got, []string{"Paris", "Lima"}) {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestCityListMove(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"B", "C", "A", "D"}},
		{3, 0, []string{"D", "A", "B", "C"}},
		{1, 1, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		l := NewCityList([]weather.Location{{City: "A"}, {City: "B"}, {City: "C"}, {City: "D"}})
		if err := l.Move(tt.from, tt.to); err != nil {
			t.Fatalf("Move(%d, %d): %v", tt.from, tt.to, err)
		}
		if got := cityNames(l.List()); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Move(%d, %d) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	l := NewCityList([]weather.Location{{City: "A"}})
	if err := l.Move(0, 3); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestCityListReturnsCopy(t *testing.T) {
	l := NewCityList([]weather.Location{{City: "A"}})
	got := l.List()
	got[0].City = "Z"
	if l.List()[0].City != "A" {
		t.Fatal("List exposed internal storage")
	}
}
