// FILE: lixenwraith/logtree/transport.go
package logtree

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Transport consumes records from the logger nodes it is attached to.
type Transport interface {
	ID() uuid.UUID
	Level() Level
	SetLevel(level Level)
	Attach(l *Logger)
	Detach(l *Logger)
	DetachAll()
	Attached() []*Logger
	Close() error
}

// Sink receives records that passed the transport level.
type Sink interface {
	OnLoggerOutput(rec Record)
}

// AttachHook is implemented by sinks that react to being attached.
type AttachHook interface {
	LoggerAttached(l *Logger)
}

// DetachHook is implemented by sinks that react to being detached.
type DetachHook interface {
	LoggerDetached(l *Logger)
}

// Base implements the attachment bookkeeping shared by all transports.
// Concrete transports embed *Base and pass themselves as the Sink. The zero
// Base tracks attachments at Trace level and delivers nowhere.
type Base struct {
	id    uuid.UUID
	level atomic.Int64
	sink  Sink

	mu        sync.Mutex
	listeners map[*Logger]ListenerID

	attached emitter[*Logger]
	detached emitter[*Logger]
}

// NewBase creates transport bookkeeping delivering to sink.
func NewBase(level Level, sink Sink) *Base {
	b := &Base{
		id:        uuid.New(),
		sink:      sink,
		listeners: make(map[*Logger]ListenerID),
	}
	b.level.Store(int64(level))
	b.attached.name = "logger attached"
	b.detached.name = "logger detached"
	return b
}

// ID returns the transport's stable identifier
func (b *Base) ID() uuid.UUID {
	return b.id
}

// Level returns the minimum level delivered to the sink
func (b *Base) Level() Level {
	return Level(b.level.Load())
}

// SetLevel changes the minimum level delivered to the sink
func (b *Base) SetLevel(level Level) {
	b.level.Store(int64(level))
}

// owner is the Transport registered on nodes: the concrete transport when
// the sink is one, otherwise the base itself.
func (b *Base) owner() Transport {
	if t, ok := b.sink.(Transport); ok {
		return t
	}
	return b
}

// Attach subscribes the transport to l's output. Attaching twice is a no-op.
func (b *Base) Attach(l *Logger) {
	b.mu.Lock()
	if _, ok := b.listeners[l]; ok {
		b.mu.Unlock()
		return
	}
	if b.listeners == nil {
		b.listeners = make(map[*Logger]ListenerID)
	}
	b.listeners[l] = l.OnOutput(func(rec Record) {
		if b.sink != nil && rec.Level >= b.Level() {
			b.sink.OnLoggerOutput(rec)
		}
	})
	b.mu.Unlock()

	l.attachTransport(b.owner())
	b.attached.emit(l)
	if hook, ok := b.sink.(AttachHook); ok {
		hook.LoggerAttached(l)
	}
}

// Detach unsubscribes the transport from l. Detaching an unknown node is a no-op.
func (b *Base) Detach(l *Logger) {
	b.mu.Lock()
	id, ok := b.listeners[l]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.listeners, l)
	b.mu.Unlock()

	l.RemoveListener(id)
	l.detachTransport(b.owner())
	b.detached.emit(l)
	if hook, ok := b.sink.(DetachHook); ok {
		hook.LoggerDetached(l)
	}
}

// DetachAll detaches from every attached node
func (b *Base) DetachAll() {
	for _, l := range b.Attached() {
		b.Detach(l)
	}
}

// Attached returns the nodes the transport is subscribed to
func (b *Base) Attached() []*Logger {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Logger, 0, len(b.listeners))
	for l := range b.listeners {
		out = append(out, l)
	}
	return out
}

// IsAttached reports whether the transport is subscribed to l
func (b *Base) IsAttached(l *Logger) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.listeners[l]
	return ok
}

// Close detaches from everything. Concrete transports extend it.
func (b *Base) Close() error {
	b.DetachAll()
	return nil
}

// OnLoggerAttached registers fn to run after each successful attach.
func (b *Base) OnLoggerAttached(fn func(*Logger)) ListenerID {
	return b.attached.on(fn)
}

// OnLoggerDetached registers fn to run after each successful detach.
func (b *Base) OnLoggerDetached(fn func(*Logger)) ListenerID {
	return b.detached.on(fn)
}

// RemoveListener unregisters an attach or detach listener
func (b *Base) RemoveListener(id ListenerID) bool {
	return b.attached.off(id) || b.detached.off(id)
}
