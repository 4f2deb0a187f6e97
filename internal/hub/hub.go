package hub

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

const subscriberBuffer = 1024

// Hub feeds raw lines through the shared Analyzer and broadcasts the
// resulting line events to all subscribers. The analyzer is fed from this
// single goroutine, so analysis stays a strict in-order fold even with many
// live consumers attached.
type Hub struct {
	analyzer    *analyzer.Analyzer
	input       <-chan model.RawLine
	mu          sync.RWMutex
	subscribers []chan model.LineEvent
	dropped     atomic.Int64
}

// New creates a Hub that reads from the input channel and feeds the given
// analyzer.
func New(input <-chan model.RawLine, a *analyzer.Analyzer) *Hub {
	return &Hub{
		analyzer: a,
		input:    input,
	}
}

// Subscribe returns a buffered channel that will receive analyzed line
// events. Multiple consumers can subscribe; each gets a copy of every event.
func (h *Hub) Subscribe() <-chan model.LineEvent {
	ch := make(chan model.LineEvent, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Dropped returns the total number of events dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Start begins reading, analyzing, and broadcasting. Blocks until the
// context is cancelled or the input channel is closed.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-h.input:
			if !ok {
				return
			}
			findings := h.analyzer.AnalyzeLine(raw.Text)
			h.broadcast(model.LineEvent{
				Raw:      raw,
				Backend:  h.analyzer.CurrentBackend(),
				Findings: findings,
			})
		}
	}
}

// broadcast sends an event to all subscribers. If a subscriber's channel is
// full, the event is dropped for that subscriber — analysis state is already
// recorded, only the live view misses it.
func (h *Hub) broadcast(ev model.LineEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			n := h.dropped.Add(1)
			log.Printf("hub: dropped event for slow consumer (total dropped: %d)", n)
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
