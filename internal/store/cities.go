package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

// CityList is an ordered, duplicate-free list of saved cities held in memory.
type CityList struct {
	mu     sync.RWMutex
	cities []weather.Location
}

var _ weather.CityList = (*CityList)(nil)

// NewCityList seeds the list with initial, skipping duplicates and blank cities.
func NewCityList(initial []weather.Location) *CityList {
	l := &CityList{}
	for _, loc := range initial {
		l.Add(loc)
	}
	return l
}

// List returns a copy of the saved cities in order.
func (l *CityList) List() []weather.Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]weather.Location{}, l.cities...)
}

// Add appends loc unless an equal city is already saved. Cities compare
// case-insensitively.
func (l *CityList) Add(loc weather.Location) bool {
	loc = normalize(loc)
	if loc.City == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(loc) >= 0 {
		return false
	}
	l.cities = append(l.cities, loc)
	return true
}

// Remove deletes loc, reporting whether it was present.
func (l *CityList) Remove(loc weather.Location) bool {
	loc = normalize(loc)

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(loc)
	if i < 0 {
		return false
	}
	l.cities = append(l.cities[:i], l.cities[i+1:]...)
	return true
}

// Move relocates the city at index from so that it ends up at index to.
func (l *CityList) Move(from, to int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.cities)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d: index out of range [0,%d)", from, to, n)
	}
	if from == to {
		return nil
	}

	loc := l.cities[from]
	l.cities = append(l.cities[:from], l.cities[from+1:]...)
	l.cities = append(l.cities[:to], append([]weather.Location{loc}, l.cities[to:]...)...)
	return nil
}

func (l *CityList) indexOf(loc weather.Location) int {
	for i, c := range l.cities {
		if strings.EqualFold(c.City, loc.City) && strings.EqualFold(c.Country, loc.Country) {
			return i
		}
	}
	return -1
}

func normalize(loc weather.Location) weather.Location {
	return weather.Location{
		City:    strings.TrimSpace(loc.City),
		Country: strings.TrimSpace(loc.Country),
	}
}
