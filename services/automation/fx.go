package automation

import (
	"dreamseller-controlplane/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module is the API-server surface: rule CRUD only. Execution lives in the
// worker.
var Module = fx.Module("automation.service",
	fx.Provide(
		NewRepository,
		NewLeadRepository,
		NewService,
		NewHTTPHandler,
	),
	fx.Invoke(registerRoutes),
)

// WorkerModule runs the engine and its scheduler.
var WorkerModule = fx.Module("automation.worker",
	fx.Provide(
		NewRepository,
		NewLeadRepository,
		NewPostRepository,
		NewHandlers,
		NewEngine,
		provideScheduler,
	),
	fx.Invoke(StartScheduler),
)

func registerRoutes(r *gin.Engine, h *HTTPHandler) {
	h.Register(r)
}

func provideScheduler(engine *Engine, cfg *config.Config) *Scheduler {
	return NewScheduler(engine, cfg.Automation.TickInterval)
}
