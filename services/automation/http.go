package automation

import (
	"net/http"

	"dreamseller-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(r *gin.Engine) {
	v1 := r.Group("/v1/automations")
	v1.POST("", h.create)
	v1.GET("", h.list)
	v1.GET("/:id", h.get)
	v1.PUT("/:id/status", h.setStatus)

	r.POST("/v1/leads", h.createLead)
}

func (h *HTTPHandler) createLead(c *gin.Context) {
	var params CreateLeadParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	lead, err := h.service.CreateLead(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, lead)
}

func (h *HTTPHandler) create(c *gin.Context) {
	var params CreateRuleParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (h *HTTPHandler) list(c *gin.Context) {
	rules, err := h.service.ListByUser(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (h *HTTPHandler) get(c *gin.Context) {
	rule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *HTTPHandler) setStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	rule, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rule)
}
