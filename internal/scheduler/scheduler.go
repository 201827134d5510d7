package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sony/gobreaker"

	"github.com/i474232898/surf-forecast/internal/metrics"
)

// CircuitReporter is implemented by providers guarded by a circuit breaker.
type CircuitReporter interface {
	Name() string
	CircuitState() gobreaker.State
}

// Scheduler periodically exports the circuit breaker state of each provider.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reporters []CircuitReporter
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, reporters ...CircuitReporter) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		reporters: reporters,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.reporters) == 0 {
		log.Println("scheduler: no circuit breakers to report; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}

	if _, err := s.scheduler.Every(interval).Do(s.ReportOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// ReportOnce records the current breaker states.
func (s *Scheduler) ReportOnce() {
	for _, r := range s.reporters {
		state := r.CircuitState()
		metrics.ProviderCircuitState.WithLabelValues(r.Name()).Set(stateValue(state))
		if state != gobreaker.StateClosed {
			log.Printf("scheduler: provider %s circuit is %s", r.Name(), state)
		}
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// stateValue maps a breaker state to the exported gauge value.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
