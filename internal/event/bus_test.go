package event

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeTaskStarted, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeTaskFinished, func(e Event) {
		received = e
	})

	bus.Publish(NewTaskFinishedEvent("styles", "css", false, time.Millisecond, []string{"css/style.css"}, nil))

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	finished, ok := received.(TaskFinishedEvent)
	if !ok {
		t.Fatalf("received %T, want TaskFinishedEvent", received)
	}
	if finished.Task != "styles" || !finished.Succeeded() {
		t.Errorf("finished = %+v", finished)
	}
}

func TestBus_SpecificBeforeWildcard(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(e Event) { order = append(order, "all") })
	bus.Subscribe(TypeReloadSent, func(e Event) { order = append(order, "specific") })

	bus.Publish(NewReloadSentEvent("reload", nil, 0))

	if len(order) != 2 || order[0] != "specific" || order[1] != "all" {
		t.Errorf("order = %v, want [specific all]", order)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeWatchTriggered, func(e Event) { called = true })

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should return false")
	}

	bus.Publish(NewWatchTriggeredEvent("*.html", "html", nil))
	if called {
		t.Error("Handler should not be called after unsubscribe")
	}
}

func TestBus_PanicRecovery(t *testing.T) {
	bus := NewBus(nil)

	secondCalled := false
	bus.Subscribe(TypeWatchError, func(e Event) { panic("boom") })
	bus.Subscribe(TypeWatchError, func(e Event) { secondCalled = true })

	bus.Publish(NewWatchErrorEvent("less/**/*.less", "styles", errors.New("bad")))

	if !secondCalled {
		t.Error("handler after a panicking handler should still run")
	}
}

func TestBus_NilPublish(t *testing.T) {
	var bus *Bus
	bus.Publish(NewServerListeningEvent("http://localhost:3000"))
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewTaskStartedEvent("t", "", false))
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}
