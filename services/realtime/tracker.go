package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dreamseller-controlplane/services/earning"

	"go.uber.org/zap"
)

const resubscribeDelay = 5 * time.Second

// Listener receives decoded earning events on the tracker's delivery
// goroutine. Callbacks must be quick; slow listeners delay everyone behind
// them.
type Listener func(event earning.EarningEvent)

// Subscriber is the transport behind a Tracker. The returned channel closes
// when the underlying subscription drops; the tracker then resubscribes.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}

// Tracker fans live earning events out to in-process listeners. One tracker
// per process shares a single subscription. Delivery is best effort and in
// arrival order; there is no replay after a reconnect.
type Tracker struct {
	subscriber Subscriber

	mu        sync.Mutex
	listeners map[int64]Listener
	nextID    int64
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewTracker(subscriber Subscriber) *Tracker {
	return &Tracker{
		subscriber: subscriber,
		listeners:  make(map[int64]Listener),
	}
}

// StartTracking begins consuming the subscription. Calling it twice is a
// no-op. A failed subscribe keeps the app alive without live updates while
// the tracker retries in the background.
func (t *Tracker) StartTracking(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.run(runCtx)
}

// StopTracking tears the subscription down and waits for delivery to stop.
func (t *Tracker) StopTracking() {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
	_ = t.subscriber.Close()
}

// AddListener registers a callback and returns its handle.
func (t *Tracker) AddListener(fn Listener) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := t.nextID
	t.listeners[id] = fn
	return id
}

// RemoveListener drops a previously registered callback. Unknown ids are
// ignored.
func (t *Tracker) RemoveListener(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.listeners, id)
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	for {
		ch, err := t.subscriber.Subscribe(ctx)
		if err != nil {
			zap.L().Warn("realtime subscription unavailable, continuing without live updates",
				zap.Duration("retry_in", resubscribeDelay),
				zap.Error(err),
			)

			select {
			case <-time.After(resubscribeDelay):
				continue
			case <-ctx.Done():
				return
			}
		}

		zap.L().Info("realtime tracker subscribed")

		if !t.consume(ctx, ch) {
			return
		}

		zap.L().Warn("realtime subscription dropped, resubscribing",
			zap.Duration("retry_in", resubscribeDelay),
		)

		select {
		case <-time.After(resubscribeDelay):
		case <-ctx.Done():
			return
		}
	}
}

// consume drains the channel until it closes. It reports false when the
// context ended and the run loop should exit.
func (t *Tracker) consume(ctx context.Context, ch <-chan []byte) bool {
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return true
			}
			t.deliver(payload)
		case <-ctx.Done():
			return false
		}
	}
}

func (t *Tracker) deliver(payload []byte) {
	var event earning.EarningEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		zap.L().Warn("dropping undecodable earning event", zap.Error(err))
		return
	}

	t.mu.Lock()
	listeners := make([]Listener, 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		t.safeCall(fn, event)
	}
}

// safeCall keeps a panicking listener from killing the delivery goroutine.
func (t *Tracker) safeCall(fn Listener, event earning.EarningEvent) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("realtime listener panicked", zap.Any("panic", r))
		}
	}()

	fn(event)
}
