package domain

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module wires storefront domain claims and verification into the API server.
var Module = fx.Module("domain.service",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, h *Handler) {
	h.Register(r)
}
