package realtime

import (
	"net/http"

	"dreamseller-controlplane/services/earning"

	"github.com/gin-gonic/gin"
)

// streamBuffer is how far a slow client may fall behind before its updates
// are dropped.
const streamBuffer = 16

type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/v1/earnings/stream", h.stream)
}

// stream is the SSE surface of the tracker: every earning published after
// the client connects is sent as an `earning` event. An optional user_id
// query narrows the stream to one user.
func (h *Handler) stream(c *gin.Context) {
	userID := c.Query("user_id")

	events := make(chan earning.EarningEvent, streamBuffer)
	id := h.tracker.AddListener(func(e earning.EarningEvent) {
		if userID != "" && e.UserID != userID {
			return
		}
		select {
		case events <- e:
		default:
			// this client is not keeping up, drop instead of blocking delivery
		}
	})
	defer h.tracker.RemoveListener(id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case event := <-events:
			c.SSEvent("earning", event)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}
