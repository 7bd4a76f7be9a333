package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kitty-webhook/internal/infra/logging"
)

// Task is the unit of work run on every tick. Errors are reported by the task itself;
// the scheduler only notes them at debug level and keeps going.
type Task interface {
	Run(ctx context.Context) error
}

// Scheduler periodically runs a Task.
type Scheduler struct {
	name       string
	interval   time.Duration
	timeout    time.Duration
	runOnStart bool
	task       Task
	log        *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Scheduler)

// WithTimeout bounds a single run. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRunOnStart makes the first run happen immediately instead of after one interval.
func WithRunOnStart(v bool) Option {
	return func(s *Scheduler) { s.runOnStart = v }
}

// New constructs a scheduler that runs task every interval.
// If interval <= 0 it defaults to 1 minute.
func New(name string, interval time.Duration, task Task, logger *zerolog.Logger, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &Scheduler{
		name:     name,
		interval: interval,
		timeout:  30 * time.Second,
		task:     task,
		log:      logging.Component(logger, "Scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	l := s.log.With().Str("job", name).Logger()
	s.log = &l
	return s
}

// Start begins the scheduler loop in a background goroutine.
// parentCtx is used as the parent for internal contexts; calling Start multiple times has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("Scheduler started")
	if s.runOnStart {
		s.runOnce(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("context cancelled; stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Interface("panic", rec).Msg("task panicked")
		}
	}()
	if err := s.task.Run(runCtx); err != nil {
		s.log.Debug().Err(err).Msg("task returned error")
	}
}

// Stop cancels the scheduler and waits for the loop to finish. It is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info().Msg("Scheduler stopped")
}
