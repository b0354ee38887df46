// Package pubsub fans layout session events out to in-process observers
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when subscribing to a hub that has shut down
var ErrClosed = errors.New("pubsub: hub closed")

// Topic names a stream of session events
type Topic string

const (
	TopicGraphUpdated      Topic = "graph-updated"
	TopicTick              Topic = "tick"
	TopicSimulationStarted Topic = "simulation-started"
	TopicSimulationEnded   Topic = "simulation-ended"
	TopicPageChanged       Topic = "page-changed"
)

// Topics lists every topic a session publishes
var Topics = []Topic{
	TopicGraphUpdated,
	TopicTick,
	TopicSimulationStarted,
	TopicSimulationEnded,
	TopicPageChanged,
}

// Position is a body's coordinates at a tick
type Position struct {
	Key string  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// Event is a single session notification. Only the fields relevant to the
// topic are set.
type Event struct {
	Topic     Topic
	Session   string
	Tick      uint64
	Alpha     float64
	Page      int
	PageCount int
	Nodes     int
	Edges     int
	Positions []Position
	// Final marks the last tick of a simulation run
	Final bool
	Err   error
}

// DefaultBuffer is the per-subscription channel capacity
const DefaultBuffer = 100

// Hub provides publish/subscribe for session events. Publishing never
// blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	subscribers map[Topic]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	buffer      int
	dropped     atomic.Uint64
}

// Subscription represents a subscription to a topic
type Subscription struct {
	topic     Topic
	channel   chan Event
	hub       *Hub
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewHub creates a hub with DefaultBuffer-sized subscriptions
func NewHub() *Hub {
	return NewHubWithBuffer(DefaultBuffer)
}

// NewHubWithBuffer creates a hub whose subscriptions hold up to buffer events
func NewHubWithBuffer(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subscribers: make(map[Topic]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
		buffer:      buffer,
	}
}

// Subscribe creates a new subscription to a topic. The subscription ends
// when ctx is cancelled, Unsubscribe is called or the hub shuts down.
func (h *Hub) Subscribe(ctx context.Context, topic Topic) (*Subscription, error) {
	h.shutdownMu.Lock()
	if h.isShutdown {
		h.shutdownMu.Unlock()
		return nil, ErrClosed
	}
	h.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topic:   topic,
		channel: make(chan Event, h.buffer),
		hub:     h,
		ctx:     subCtx,
		cancel:  cancel,
	}

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[*Subscription]bool)
	}
	h.subscribers[topic][sub] = true
	h.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-h.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends ev to all subscribers of ev.Topic
func (h *Hub) Publish(ev Event) {
	h.shutdownMu.Lock()
	if h.isShutdown {
		h.shutdownMu.Unlock()
		return
	}
	h.shutdownMu.Unlock()

	// snapshot so a concurrent Unsubscribe cannot modify the map mid-iteration
	h.mu.RLock()
	topicSubs := h.subscribers[ev.Topic]
	if len(topicSubs) == 0 {
		h.mu.RUnlock()
		return
	}
	subs := make([]*Subscription, 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of subscribers for a topic
func (h *Hub) SubscriberCount(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Shutdown closes all subscriptions
func (h *Hub) Shutdown() {
	h.shutdownMu.Lock()
	if h.isShutdown {
		h.shutdownMu.Unlock()
		return
	}
	h.isShutdown = true
	h.shutdownMu.Unlock()

	close(h.shutdown)

	h.mu.Lock()
	for topic := range h.subscribers {
		for sub := range h.subscribers[topic] {
			sub.close()
		}
		delete(h.subscribers, topic)
	}
	h.mu.Unlock()
}

// Topic returns the subscribed topic
func (s *Subscription) Topic() Topic {
	return s.topic
}

// Channel returns the subscription's event channel. It is closed when the
// subscription ends.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if s.hub.subscribers[s.topic] != nil {
		delete(s.hub.subscribers[s.topic], s)
		if len(s.hub.subscribers[s.topic]) == 0 {
			delete(s.hub.subscribers, s.topic)
		}
	}

	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
