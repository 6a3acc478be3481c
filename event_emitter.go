package neohub

import (
	"slices"
	"sync"
)

type callback[T any] func(T)

// Unsubscribe removes the subscription it was returned for. Calling it more
// than once has no further effect.
type Unsubscribe func()

type listener[V any] struct {
	fn callback[V]
}

// EventEmitterCallback maps events (of type K) to callbacks receiving values of
// type V. Callbacks run synchronously, in registration order, on the goroutine
// calling Emit. A panicking callback is logged and does not prevent the rest
// from running.
type EventEmitterCallback[K comparable, V any] struct {
	listeners map[K][]*listener[V]
	lock      sync.RWMutex
	logger    Logger
}

// NewEventEmitter creates a new EventEmitterCallback and returns a pointer to it.
// Panics raised by callbacks are reported to logger.
func NewEventEmitter[K comparable, V any](logger Logger) *EventEmitterCallback[K, V] {
	return &EventEmitterCallback[K, V]{
		listeners: make(map[K][]*listener[V]),
		logger:    logger,
	}
}

// On registers a new listener for the given event.
func (e *EventEmitterCallback[K, V]) On(event K, fn callback[V]) Unsubscribe {
	l := &listener[V]{fn: fn}

	e.lock.Lock()
	e.listeners[event] = append(e.listeners[event], l)
	e.lock.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(event, l) })
	}
}

func (e *EventEmitterCallback[K, V]) remove(event K, l *listener[V]) {
	e.lock.Lock()
	defer e.lock.Unlock()

	listeners := e.listeners[event]
	if i := slices.Index(listeners, l); i >= 0 {
		// copy so that an Emit iterating the old slice is not affected
		e.listeners[event] = slices.Delete(slices.Clone(listeners), i, i+1)
	}
}

// Emit calls every listener registered for the given event. Listeners added or
// removed while Emit runs take effect from the next Emit.
func (e *EventEmitterCallback[K, V]) Emit(event K, data V) {
	e.lock.RLock()
	listeners := e.listeners[event]
	e.lock.RUnlock()

	for _, l := range listeners {
		e.call(event, l, data)
	}
}

func (e *EventEmitterCallback[K, V]) call(event K, l *listener[V], data V) {
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.Errorf("error in %v callback: %v", event, r)
		}
	}()

	l.fn(data)
}
