package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/farisanuar/teg-site-survey/internal/store"
)

// Sweeper periodically enforces image retention across the configured stores.
type Sweeper struct {
	scheduler *gocron.Scheduler
	stores    []*store.ImageStore
	interval  time.Duration
}

// New creates a Sweeper over the given stores.
func New(stores []*store.ImageStore, interval time.Duration) *Sweeper {
	s := gocron.NewScheduler(time.UTC)
	return &Sweeper{
		scheduler: s,
		stores:    stores,
		interval:  interval,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Sweeper) Start() error {
	if len(s.stores) == 0 {
		log.Println("sweeper: no image stores configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		for _, st := range s.stores {
			if removed := st.Prune(); removed > 0 {
				log.Printf("sweeper: removed %d expired images from %s", removed, st.Dir())
			}
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (s *Sweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
