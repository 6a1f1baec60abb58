package catalog

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
	v1 := r.Group("/v1/products")
	v1.POST("", h.create)
	v1.GET("", h.list)
	v1.GET("/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	p, err := h.service.Create(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) list(c *gin.Context) {
	products, err := h.service.ListByUser(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}
