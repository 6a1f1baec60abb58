package payout

import (
	"context"
	"time"

	"dreamseller-controlplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// HandleRun is the worker entry point for a payout pass.
func (s *Service) HandleRun(ctx context.Context, t *asynq.Task) error {
	return s.ProcessDue(ctx, time.Now().UTC())
}

// RegisterTask mounts the payout run task on the worker mux.
func RegisterTask(mux *asynq.ServeMux, s *Service) {
	mux.HandleFunc(taskname.PayoutRun, s.HandleRun)
}

// RunLoop enqueues a payout run on the configured cadence.
type RunLoop struct {
	client   *asynq.Client
	interval time.Duration
}

func NewRunLoop(client *asynq.Client, interval time.Duration) *RunLoop {
	return &RunLoop{client: client, interval: interval}
}

func (l *RunLoop) Run(ctx context.Context) {
	zap.L().Info("[Scheduler] started payout loop", zap.Duration("interval", l.interval))

	for {
		select {
		case <-time.After(l.interval):
			if _, err := l.client.EnqueueContext(ctx,
				asynq.NewTask(taskname.PayoutRun, nil),
				asynq.Queue("critical"),
			); err != nil {
				zap.L().Error("[Scheduler] failed to enqueue payout run", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] payout loop stopped")
			return
		}
	}
}
