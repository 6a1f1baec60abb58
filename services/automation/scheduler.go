package automation

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler drives the engine on a fixed wall-clock interval. It belongs to
// the worker process; nothing about its lifetime is tied to any client or
// view.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
}

func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{engine: engine, interval: interval}
}

// StartScheduler is invoked by FX on worker start.
func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, c := context.WithCancel(context.Background())
			cancel = c
			go s.run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started automation scheduler", zap.Duration("interval", s.interval))

	for {
		select {
		case <-time.After(s.interval):
			s.tick(ctx)
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] automation scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()

	if _, err := s.engine.Tick(ctx); err != nil {
		zap.L().Error("[Scheduler] automation tick failed", zap.Error(err))
		return
	}

	zap.L().Debug("[Scheduler] automation tick finished",
		zap.Duration("duration", time.Since(start)),
	)
}
