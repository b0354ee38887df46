package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Channel():
		if !ok {
			t.Fatal("Subscription closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
	return Event{}
}

func TestPublishTick(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sub, err := hub.Subscribe(context.Background(), TopicTick)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	hub.Publish(Event{
		Topic:     TopicTick,
		Session:   "s-1",
		Tick:      3,
		Alpha:     0.9,
		Positions: []Position{{Key: "artist-1", X: 10, Y: 20}},
	})

	ev := receive(t, sub)
	if ev.Tick != 3 || ev.Session != "s-1" || len(ev.Positions) != 1 {
		t.Errorf("Unexpected event %+v", ev)
	}
	if ev.Positions[0].Key != "artist-1" {
		t.Errorf("Unexpected position %+v", ev.Positions[0])
	}
}

func TestMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	var subs []*Subscription
	for i := 0; i < 5; i++ {
		sub, err := hub.Subscribe(context.Background(), TopicGraphUpdated)
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		defer sub.Unsubscribe()
		subs = append(subs, sub)
	}

	hub.Publish(Event{Topic: TopicGraphUpdated, Nodes: 12})

	for i, sub := range subs {
		if ev := receive(t, sub); ev.Nodes != 12 {
			t.Errorf("Subscriber %d: expected 12 nodes, got %d", i, ev.Nodes)
		}
	}
}

func TestTopicIsolation(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	ticks, _ := hub.Subscribe(context.Background(), TopicTick)
	pages, _ := hub.Subscribe(context.Background(), TopicPageChanged)

	hub.Publish(Event{Topic: TopicPageChanged, Page: 2, PageCount: 3})

	if ev := receive(t, pages); ev.Page != 2 {
		t.Errorf("Expected page 2, got %d", ev.Page)
	}
	select {
	case ev := <-ticks.Channel():
		t.Errorf("Tick subscriber received %v", ev.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sub, _ := hub.Subscribe(context.Background(), TopicSimulationEnded)
	if hub.SubscriberCount(TopicSimulationEnded) != 1 {
		t.Fatalf("Expected 1 subscriber")
	}

	sub.Unsubscribe()
	sub.Unsubscribe()

	if hub.SubscriberCount(TopicSimulationEnded) != 0 {
		t.Errorf("Expected 0 subscribers after unsubscribe")
	}
	if _, ok := <-sub.Channel(); ok {
		t.Error("Channel should be closed")
	}
}

func TestContextCancellation(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := hub.Subscribe(ctx, TopicSimulationStarted)
	cancel()

	select {
	case _, ok := <-sub.Channel():
		if ok {
			t.Error("Expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("Subscription not closed after cancel")
	}
	if hub.SubscriberCount(TopicSimulationStarted) != 0 {
		t.Error("Cancelled subscription still registered")
	}
}

func TestFullBufferDrops(t *testing.T) {
	hub := NewHubWithBuffer(2)
	defer hub.Shutdown()

	sub, _ := hub.Subscribe(context.Background(), TopicTick)
	for i := 0; i < 5; i++ {
		hub.Publish(Event{Topic: TopicTick, Tick: uint64(i)})
	}

	if hub.Dropped() != 3 {
		t.Errorf("Expected 3 dropped events, got %d", hub.Dropped())
	}
	if ev := receive(t, sub); ev.Tick != 0 {
		t.Errorf("Expected the oldest event first, got tick %d", ev.Tick)
	}
}

func TestConcurrentPublish(t *testing.T) {
	hub := NewHubWithBuffer(1000)
	defer hub.Shutdown()

	sub, _ := hub.Subscribe(context.Background(), TopicTick)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hub.Publish(Event{Topic: TopicTick})
			}
		}()
	}
	wg.Wait()

	if got := len(sub.Channel()); got != 500 {
		t.Errorf("Expected 500 buffered events, got %d", got)
	}
}

func TestShutdown(t *testing.T) {
	hub := NewHub()
	sub, _ := hub.Subscribe(context.Background(), TopicGraphUpdated)

	hub.Shutdown()
	hub.Shutdown()

	if _, ok := <-sub.Channel(); ok {
		t.Error("Channel should be closed on shutdown")
	}
	hub.Publish(Event{Topic: TopicGraphUpdated})

	if _, err := hub.Subscribe(context.Background(), TopicTick); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
