package expiry

import (
	"context"
	"time"

	"questflow/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler fires the sweep once a day at the configured wall-clock time.
type Scheduler struct {
	svc    *Service
	cfg    *config.Config
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(svc *Service, cfg *config.Config) *Scheduler {
	return &Scheduler{svc: svc, cfg: cfg}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		wait := time.Until(s.nextRun(time.Now()))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if _, err := s.svc.EnqueueDueQuests(ctx, time.Now()); err != nil {
			zap.L().Error("expiry sweep failed", zap.Error(err))
		}
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(),
		s.cfg.Sweeper.Hour, s.cfg.Sweeper.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func registerScheduler(lc fx.Lifecycle, scheduler *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}
