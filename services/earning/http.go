package earning

import (
	"net/http"
	"time"

	"dreamseller-controlplane/pkg/db/pagination"
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
	v1 := r.Group("/v1/earnings")
	v1.POST("", h.record)
	v1.GET("", h.list)
	v1.GET("/today", h.todayTotal)
	v1.GET("/weekly", h.weeklySeries)
	v1.GET("/aggregates", h.aggregates)
}

func (h *Handler) record(c *gin.Context) {
	var params RecordParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	event, err := h.service.Record(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *Handler) list(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.Error(errutil.BadRequest("invalid pagination parameters", err))
		return
	}

	filter := ListFilter{
		UserID:     c.Query("user_id"),
		BusinessID: c.Query("business_id"),
		Limit:      page.Limit + 1, // over-fetch one row to detect has_more
	}

	if page.Cursor != "" {
		cur, err := pagination.DecodeCursor(page.Cursor)
		if err != nil {
			c.Error(errutil.BadRequest("invalid cursor", err))
			return
		}
		filter.Cursor = cur.ID
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.Error(errutil.BadRequest("from must be RFC3339", err))
			return
		}
		filter.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.Error(errutil.BadRequest("to must be RFC3339", err))
			return
		}
		filter.To = t
	}

	events, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	events, info := pagination.BuildCursorPageInfo(events, page.Limit, func(e EarningEvent) string {
		cursor, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID,
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		})
		return cursor
	})

	c.JSON(http.StatusOK, gin.H{"data": events, "page_info": info})
}

func (h *Handler) todayTotal(c *gin.Context) {
	total, err := h.service.TodayTotal(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (h *Handler) weeklySeries(c *gin.Context) {
	series, err := h.service.WeeklySeries(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": series})
}

func (h *Handler) aggregates(c *gin.Context) {
	agg, err := h.service.AggregatesFor(c.Request.Context(), c.Query("user_id"), c.Query("business"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, agg)
}
