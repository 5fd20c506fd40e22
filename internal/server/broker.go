package server

import (
	"encoding/json"
	"sync"
)

// SSEEvent is the payload published to poll subscribers.
type SSEEvent struct {
	Type   string `json:"type"`
	PollID string `json:"pollId,omitempty"`
}

// Broker is an in-process pub/sub for SSE events, keyed by poll ID. Result
// panels subscribe to a poll and refetch counts when a vote lands.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded SSE events for the given poll.
func (b *Broker) Subscribe(pollID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[pollID] == nil {
		b.subs[pollID] = make(map[chan []byte]struct{})
	}
	b.subs[pollID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the poll's subscribers.
func (b *Broker) Unsubscribe(pollID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[pollID], ch)
	if len(b.subs[pollID]) == 0 {
		delete(b.subs, pollID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given poll.
func (b *Broker) Publish(pollID string, event SSEEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[pollID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
