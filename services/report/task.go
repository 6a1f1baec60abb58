package report

import (
	"context"
	"time"

	"dreamseller-controlplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// HandleMonthly builds the report for the previous calendar month.
func (s *Service) HandleMonthly(ctx context.Context, t *asynq.Task) error {
	_, err := s.BuildMonthly(ctx, previousMonth(time.Now().UTC()))
	return err
}

// previousMonth returns the first instant of the month before now. Anchoring
// on the first of the current month keeps AddDate from normalizing day 29-31
// into the wrong month.
func previousMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
}

// RegisterTask mounts the monthly report task on the worker mux.
func RegisterTask(mux *asynq.ServeMux, s *Service) {
	mux.HandleFunc(taskname.ReportMonthly, s.HandleMonthly)
}

// MonthlyLoop enqueues a report build shortly after each month rolls over.
type MonthlyLoop struct {
	client *asynq.Client
}

func NewMonthlyLoop(client *asynq.Client) *MonthlyLoop {
	return &MonthlyLoop{client: client}
}

func (l *MonthlyLoop) Run(ctx context.Context) {
	zap.L().Info("[Scheduler] started monthly report loop")

	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), 1, 0, 15, 0, 0, time.UTC).AddDate(0, 1, 0)

		select {
		case <-time.After(next.Sub(now)):
			if _, err := l.client.EnqueueContext(ctx,
				asynq.NewTask(taskname.ReportMonthly, nil),
				asynq.Queue("default"),
			); err != nil {
				zap.L().Error("[Scheduler] failed to enqueue monthly report", zap.Error(err))
			}
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] monthly report loop stopped")
			return
		}
	}
}
