package logtree

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ListenerID identifies a registered listener for later removal.
type ListenerID uint64

var nextListenerID atomic.Uint64

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// emitter is a synchronous notification list. Listeners run on the emitting
// goroutine in registration order; a panicking listener is recovered and reported.
type emitter[T any] struct {
	mu        sync.RWMutex
	name      string
	listeners []listener[T]

	// report decides whether listener panics reach stderr; nil reports them
	report func() bool
}

func (e *emitter[T]) on(fn func(T)) ListenerID {
	id := ListenerID(nextListenerID.Add(1))
	e.mu.Lock()
	e.listeners = append(e.listeners, listener[T]{id: id, fn: fn})
	e.mu.Unlock()
	return id
}

func (e *emitter[T]) off(id ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (e *emitter[T]) count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}

func (e *emitter[T]) emit(v T) {
	e.mu.RLock()
	if len(e.listeners) == 0 {
		e.mu.RUnlock()
		return
	}
	snapshot := make([]listener[T], len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.RUnlock()

	for _, l := range snapshot {
		e.safeCall(l.fn, v)
	}
}

func (e *emitter[T]) safeCall(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			enabled := e.report == nil || e.report()
			internalLog(enabled, "%s listener panicked: %v\n%s", e.name, r, debug.Stack())
		}
	}()
	fn(v)
}
