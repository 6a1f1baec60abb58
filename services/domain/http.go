package domain

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
	v1 := r.Group("/v1/domains")
	v1.POST("", h.claim)
	v1.GET("", h.listByBusiness)
	v1.GET("/:id", h.get)
	v1.POST("/:id/verify", h.verify)
}

func (h *Handler) claim(c *gin.Context) {
	var params ClaimParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	d, err := h.service.Claim(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *Handler) listByBusiness(c *gin.Context) {
	domains, err := h.service.ListByBusiness(c.Request.Context(), c.Query("business_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": domains})
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, d)
}

func (h *Handler) verify(c *gin.Context) {
	d, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, d)
}
