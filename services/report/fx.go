package report

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

// WorkerModule wires monthly report generation into the worker process.
var WorkerModule = fx.Module("report.worker",
	fx.Provide(
		NewMinioUploader,
		NewService,
	),
	fx.Invoke(RegisterTask),
	fx.Invoke(startMonthlyLoop),
)

type monthlyLoopParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Client    *asynq.Client
}

func startMonthlyLoop(p monthlyLoopParams) {
	loop := NewMonthlyLoop(p.Client)

	var cancel context.CancelFunc
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			loopCtx, c := context.WithCancel(context.Background())
			cancel = c
			go loop.Run(loopCtx)
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
