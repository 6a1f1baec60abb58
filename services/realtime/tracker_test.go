package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dreamseller-controlplane/services/earning"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type memorySubscriber struct {
	mu       sync.Mutex
	ch       chan []byte
	failNext error
	calls    int
}

func newMemorySubscriber() *memorySubscriber {
	return &memorySubscriber{}
}

func (s *memorySubscriber) Subscribe(ctx context.Context) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}

	s.ch = make(chan []byte, 16)
	return s.ch, nil
}

func (s *memorySubscriber) Close() error { return nil }

func (s *memorySubscriber) publish(t *testing.T, event earning.EarningEvent) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ch <- payload
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTracker_DeliversToListeners(t *testing.T) {
	sub := newMemorySubscriber()
	tracker := NewTracker(sub)

	var mu sync.Mutex
	var got []earning.EarningEvent
	tracker.AddListener(func(e earning.EarningEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})

	tracker.StartTracking(context.Background())
	defer tracker.StopTracking()

	waitFor(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.ch != nil
	})

	sub.publish(t, earning.EarningEvent{ID: "e1", Amount: 10})
	sub.publish(t, earning.EarningEvent{ID: "e2", Amount: 20})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "e1", got[0].ID)
	require.Equal(t, "e2", got[1].ID)
}

func TestTracker_RemoveListenerStopsDelivery(t *testing.T) {
	sub := newMemorySubscriber()
	tracker := NewTracker(sub)

	var count int
	var mu sync.Mutex
	id := tracker.AddListener(func(e earning.EarningEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	tracker.StartTracking(context.Background())
	defer tracker.StopTracking()

	waitFor(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.ch != nil
	})

	sub.publish(t, earning.EarningEvent{ID: "e1"})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	})

	tracker.RemoveListener(id)
	sub.publish(t, earning.EarningEvent{ID: "e2"})

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
}

func TestTracker_PanickingListenerDoesNotKillDelivery(t *testing.T) {
	sub := newMemorySubscriber()
	tracker := NewTracker(sub)

	tracker.AddListener(func(e earning.EarningEvent) {
		panic("listener bug")
	})

	var count int
	var mu sync.Mutex
	tracker.AddListener(func(e earning.EarningEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	tracker.StartTracking(context.Background())
	defer tracker.StopTracking()

	waitFor(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.ch != nil
	})

	sub.publish(t, earning.EarningEvent{ID: "e1"})
	sub.publish(t, earning.EarningEvent{ID: "e2"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 2
	})
}

func TestTracker_RetriesAfterFailedSubscribe(t *testing.T) {
	sub := newMemorySubscriber()
	sub.failNext = errors.New("redis unavailable")
	tracker := NewTracker(sub)

	tracker.StartTracking(context.Background())
	defer tracker.StopTracking()

	// first attempt fails; the tracker must keep running and not panic
	waitFor(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.calls >= 1
	})
}
