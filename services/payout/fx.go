package payout

import (
	"context"

	"dreamseller-controlplane/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

// Module wires the payout API surface. The earning repository and payment
// provider come from their own modules.
var Module = fx.Module("payout.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
)

// WorkerModule wires the payout runner into the worker process.
var WorkerModule = fx.Module("payout.worker",
	fx.Provide(
		NewRepository,
		NewService,
	),
	fx.Invoke(RegisterTask),
	fx.Invoke(startRunLoop),
)

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}

type runLoopParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Client    *asynq.Client
}

func startRunLoop(p runLoopParams) {
	loop := NewRunLoop(p.Client, p.Config.Payout.RunInterval)

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
