package payout

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
	v1 := r.Group("/v1/payouts")
	v1.POST("/schedule", h.setup)
	v1.GET("/schedule", h.getSchedule)
	v1.GET("/transactions", h.listTransactions)
	v1.GET("/balance", h.balance)
}

func (h *Handler) setup(c *gin.Context) {
	var params SetupParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	schedule, err := h.service.Setup(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, schedule)
}

func (h *Handler) getSchedule(c *gin.Context) {
	schedule, err := h.service.GetByUser(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

func (h *Handler) listTransactions(c *gin.Context) {
	txs, err := h.service.ListTransactions(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": txs})
}

func (h *Handler) balance(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.Error(errutil.ValidationFailed("user_id is required", nil))
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
