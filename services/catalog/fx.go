package catalog

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
)

// WorkerModule exposes the repository to the automation handlers.
var WorkerModule = fx.Module("catalog.worker",
	fx.Provide(NewRepository),
)

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}
