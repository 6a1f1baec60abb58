package realtime

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module hosts the shared tracker in the API server process and its SSE
// surface.
var Module = fx.Module("realtime.tracker",
	fx.Provide(
		NewRedisSubscriber,
		NewTracker,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
	fx.Invoke(startTracker),
)

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}

func startTracker(lc fx.Lifecycle, t *Tracker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			t.StartTracking(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			t.StopTracking()
			return nil
		},
	})
}
