package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/pkg/metrics"
)

// hubBuffer is how many events a subscriber may lag behind before new ones
// are dropped for it.
const hubBuffer = 64

// Hub is the in-process host UI used when no message broker is configured.
// It implements ports.HostUI and UIFeed by fanning events out to every
// subscribed WebSocket client. Each subscriber drains its own queue, so a
// stalled client never blocks the controller.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []byte)}
}

func (h *Hub) SubscribeUI(fn func(data []byte)) (func(), error) {
	ch := make(chan []byte, hubBuffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		for data := range ch {
			fn(data)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}, nil
}

func (h *Hub) RequestInput(ctx context.Context, req domain.InputRequest) error {
	return h.broadcast(domain.UIEvent{Type: domain.EventInputRequest, Request: &req})
}

func (h *Hub) UpdatePlaces(ctx context.Context, places []domain.Place) error {
	if places == nil {
		places = []domain.Place{}
	}
	return h.broadcast(domain.UIEvent{Type: domain.EventPlaces, Places: places})
}

func (h *Hub) ShowMessage(ctx context.Context, msg string) error {
	return h.broadcast(domain.UIEvent{Type: domain.EventMessage, Message: msg})
}

func (h *Hub) broadcast(ev domain.UIEvent) error {
	ev.Time = time.Now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- data:
		default:
			metrics.UIEventsDropped.Inc()
		}
	}
	return nil
}
