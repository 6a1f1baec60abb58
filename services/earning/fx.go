package earning

import (
	"context"

	"dreamseller-controlplane/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

// Module wires the earnings writer and its HTTP surface into the API server.
var Module = fx.Module("earning.service",
	fx.Provide(
		NewRepository,
		NewRedisPublisher,
		NewService,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
)

// WorkerModule wires the simulator task into the worker process.
var WorkerModule = fx.Module("earning.worker",
	fx.Provide(
		NewRepository,
		NewRedisPublisher,
		NewService,
		NewSimulator,
	),
	fx.Invoke(RegisterSimulator),
	fx.Invoke(startSimulatorLoop),
)

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}

type simulatorLoopParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Client    *asynq.Client
}

func startSimulatorLoop(p simulatorLoopParams) {
	if !p.Config.Simulator.Enabled {
		return
	}

	loop := NewSimulatorLoop(p.Client, p.Config.Simulator.Interval)

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
