package business

import (
	"net/http"

	"dreamseller-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *gin.Engine) {
	v1 := r.Group("/v1/businesses")
	v1.GET("/modules", h.modules)
	v1.POST("/launch", h.launch)
	v1.GET("", h.list)
	v1.GET("/:id", h.get)
	v1.PATCH("/:id", h.update)
}

func (h *Handler) modules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": Modules()})
}

type launchRequest struct {
	ModuleID string `json:"module_id"`
	UserID   string `json:"user_id"`
}

func (h *Handler) launch(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	b, err := h.service.Launch(c.Request.Context(), req.ModuleID, req.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) list(c *gin.Context) {
	businesses, err := h.service.ListByUser(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": businesses})
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) update(c *gin.Context) {
	var params UpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	b, err := h.service.Update(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}
