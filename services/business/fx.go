package business

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("business.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
)

// WorkerModule exposes the repository and simulator source to the worker.
var WorkerModule = fx.Module("business.worker",
	fx.Provide(
		NewRepository,
		NewSimulatorSource,
	),
)

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}
