package neohub

import (
	"strings"
	"sync"
	"testing"
)

func TestSingleListener(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	var results []int

	emitter.On("event", func(data int) {
		results = append(results, data)
	})

	emitter.Emit("event", 42)

	if len(results) != 1 || results[0] != 42 {
		t.Errorf("Expected to receive [42], but got %v", results)
	}
}

func TestListenersRunInOrder(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	var results []int

	emitter.On("event", func(data int) {
		results = append(results, data)
	})
	emitter.On("event", func(data int) {
		results = append(results, data*2)
	})

	emitter.Emit("event", 10)

	if len(results) != 2 || results[0] != 10 || results[1] != 20 {
		t.Errorf("Expected [10 20], but got %v", results)
	}
}

func TestNoListeners(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	// emitting an event nobody listens to is a no-op
	emitter.Emit("nonexistentEvent", 100)
}

func TestMultipleEvents(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	var event1Result, event2Result int

	emitter.On("event1", func(data int) {
		event1Result = data
	})
	emitter.On("event2", func(data int) {
		event2Result = data
	})

	emitter.Emit("event1", 5)
	emitter.Emit("event2", 15)

	if event1Result != 5 {
		t.Errorf("For 'event1', expected 5, got %d", event1Result)
	}
	if event2Result != 15 {
		t.Errorf("For 'event2', expected 15, got %d", event2Result)
	}
}

func TestUnsubscribeListener(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	var a, b int

	unsubscribe := emitter.On("event", func(int) { a++ })
	emitter.On("event", func(int) { b++ })

	emitter.Emit("event", 1)
	unsubscribe()
	unsubscribe()
	emitter.Emit("event", 1)

	if a != 1 || b != 2 {
		t.Errorf("Expected a=1 b=2, got a=%d b=%d", a, b)
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	var calls []string

	var unsubscribeSecond Unsubscribe
	emitter.On("event", func(int) {
		calls = append(calls, "first")
		unsubscribeSecond()
	})
	unsubscribeSecond = emitter.On("event", func(int) {
		calls = append(calls, "second")
	})

	// removal takes effect from the next Emit
	emitter.Emit("event", 1)
	emitter.Emit("event", 1)

	if strings.Join(calls, ",") != "first,second,first" {
		t.Errorf("Unexpected calls %v", calls)
	}
}

func TestPanickingListener(t *testing.T) {
	logs := &syncBuffer{}
	emitter := NewEventEmitter[string, int](NewWriterLogger(logs))
	var got int

	emitter.On("event", func(int) { panic("boom") })
	emitter.On("event", func(data int) { got = data })

	emitter.Emit("event", 7)

	if got != 7 {
		t.Errorf("Expected the second listener to receive 7, got %d", got)
	}
	if !strings.Contains(logs.String(), "error in event callback: boom") {
		t.Errorf("Expected the panic to be logged, got %q", logs.String())
	}
}

func TestConcurrent(t *testing.T) {
	emitter := NewEventEmitter[string, int](nil)
	var mu sync.Mutex
	var results []int
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emitter.On("event", func(data int) {
				mu.Lock()
				results = append(results, data+i)
				mu.Unlock()
			})
		}(i)
	}
	wg.Wait()

	for j := 0; j < 10; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			emitter.Emit("event", j)
		}(j)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	// 10 listeners times 10 emissions
	if len(results) != 100 {
		t.Errorf("Expected 100 callbacks, but got %d", len(results))
	}
}
