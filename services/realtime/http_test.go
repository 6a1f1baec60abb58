package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"dreamseller-controlplane/services/earning"
)

// streamRecorder makes the recorder body safe to read while the stream
// handler is still writing.
type streamRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *streamRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *streamRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestHandler_StreamDeliversMatchingEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sub := newMemorySubscriber()
	tracker := NewTracker(sub)
	tracker.StartTracking(context.Background())
	defer tracker.StopTracking()

	waitFor(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.ch != nil
	})

	r := gin.New()
	NewHandler(tracker).Register(r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/earnings/stream?user_id=user-1", nil).WithContext(ctx)
	rec := &streamRecorder{ResponseRecorder: httptest.NewRecorder()}

	served := make(chan struct{})
	go func() {
		defer close(served)
		r.ServeHTTP(rec, req)
	}()

	// the handler registers its listener once it is running
	waitFor(t, func() bool {
		tracker.mu.Lock()
		defer tracker.mu.Unlock()
		return len(tracker.listeners) == 1
	})

	sub.publish(t, earning.EarningEvent{ID: "e1", UserID: "user-1", Amount: 10})
	sub.publish(t, earning.EarningEvent{ID: "e2", UserID: "user-2", Amount: 99})

	waitFor(t, func() bool { return strings.Contains(rec.body(), "e1") })
	cancel()
	<-served

	body := rec.body()
	require.Contains(t, body, "event:earning")
	require.Contains(t, body, `"user-1"`)
	// the other user's earning was filtered out before it reached the wire
	require.NotContains(t, body, "user-2")

	// a disconnected client leaves no listener behind
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	require.Empty(t, tracker.listeners)
}
