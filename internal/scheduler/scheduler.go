package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-snapshot/internal/weather"
)

// refreshTimeout bounds one city's refresh (two upstream requests).
const refreshTimeout = 30 * time.Second

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	Cities() []weather.Location
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically refreshes the stored snapshot of every saved city.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, service Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The saved-city list is read on every run, so cities added through the API
// are picked up on the next tick.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes all saved cities concurrently and waits for them to finish.
func (s *Scheduler) RunOnce() {
	cities := s.service.Cities()
	if len(cities) == 0 {
		log.Println("scheduler: no saved cities; nothing to refresh")
		return
	}

	log.Printf("scheduler: refreshing %d saved cities", len(cities))

	var wg sync.WaitGroup
	for _, loc := range cities {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, loc); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
			}
		}(loc)
	}
	wg.Wait()
	log.Println("scheduler: completed weather refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
