// FILE: lixenwraith/logtree/logger.go
package logtree

import (
	"sync"

	"github.com/google/uuid"
)

// Logger is a node in the logging graph. Records written to a node are
// filtered by its level, raised to its output listeners (transports among
// them), and forwarded to every node in its forward set. The node given as
// parent at construction is always part of that set. The zero Logger is an
// unnamed root node with a nil ID.
type Logger struct {
	id     uuid.UUID
	name   string
	parent *Logger

	mu         sync.Mutex
	level      Level
	hasLevel   bool
	buffering  bool
	buffer     []bufferedRecord
	flushing   bool // a Flush is delivering held records
	flushAgain bool // Flush was called again while flushing
	flushEnd   bool // buffering ends once the drain empties the buffer
	forwards   []*Logger // replaced on mutation, never modified in place
	transports map[uuid.UUID]Transport

	output emitter[Record]
}

// Option configures a Logger at construction.
type Option func(*Logger)

// WithLevel sets the minimum level the node accepts.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
		l.hasLevel = true
	}
}

// WithParent sets the permanent parent the node forwards to.
func WithParent(parent *Logger) Option {
	return func(l *Logger) {
		l.parent = parent
	}
}

// New creates a logger node. An empty name means the node is unnamed.
func New(name string, opts ...Option) *Logger {
	l := &Logger{
		id:         uuid.New(),
		name:       name,
		transports: make(map[uuid.UUID]Transport),
	}
	l.output.name = "logger output"

	for _, opt := range opts {
		opt(l)
	}

	if l.parent != nil {
		l.forwards = []*Logger{l.parent}
	}
	return l
}

// ID returns the node's stable identifier
func (l *Logger) ID() uuid.UUID {
	return l.id
}

// Name returns the node name, empty when unnamed
func (l *Logger) Name() string {
	return l.name
}

// Parent returns the constructor parent or nil
func (l *Logger) Parent() *Logger {
	return l.parent
}

// Level returns the configured level and whether one is set.
func (l *Logger) Level() (Level, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level, l.hasLevel
}

// SetLevel sets the minimum accepted level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.hasLevel = true
	l.mu.Unlock()
}

// ClearLevel removes the configured level so the node accepts everything.
func (l *Logger) ClearLevel() {
	l.mu.Lock()
	l.hasLevel = false
	l.mu.Unlock()
}

// IsEnabled reports whether this node alone would accept a record at level.
func (l *Logger) IsEnabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabledLocked(level)
}

func (l *Logger) enabledLocked(level Level) bool {
	return !l.hasLevel || level >= l.level
}

// LevelToRoot returns the highest level configured on this node and its
// parent chain, or LevelTrace when none is configured.
func (l *Logger) LevelToRoot() Level {
	highest := LevelTrace
	for n := l; n != nil; n = n.parent {
		if level, ok := n.Level(); ok && level > highest {
			highest = level
		}
	}
	return highest
}

// Write emits a record at the given level.
func (l *Logger) Write(level Level, args ...any) {
	l.propagate(newRecord(l, level, args), false)
}

// Force emits a record that bypasses every level filter on its way through
// the graph. Buffering nodes still hold it.
func (l *Logger) Force(level Level, args ...any) {
	l.propagate(newRecord(l, level, args), true)
}

// Trace logs at trace level
func (l *Logger) Trace(args ...any) {
	l.Write(LevelTrace, args...)
}

// Debug logs at debug level
func (l *Logger) Debug(args ...any) {
	l.Write(LevelDebug, args...)
}

// Info logs at information level
func (l *Logger) Info(args ...any) {
	l.Write(LevelInformation, args...)
}

// Warning logs at warning level
func (l *Logger) Warning(args ...any) {
	l.Write(LevelWarning, args...)
}

// Error logs at error level
func (l *Logger) Error(args ...any) {
	l.Write(LevelError, args...)
}

// Critical logs at critical level
func (l *Logger) Critical(args ...any) {
	l.Write(LevelCritical, args...)
}

// propagate filters, buffers, or delivers a record at this node.
func (l *Logger) propagate(rec Record, forceful bool) {
	l.mu.Lock()
	if !forceful && !l.enabledLocked(rec.Level) {
		l.mu.Unlock()
		return
	}
	if l.buffering {
		l.buffer = append(l.buffer, bufferedRecord{record: rec, forceful: forceful})
		l.mu.Unlock()
		return
	}
	targets := l.forwards
	l.mu.Unlock()

	l.deliver(rec, forceful, targets)
}

// deliver raises output here and continues into the forward targets.
func (l *Logger) deliver(rec Record, forceful bool, targets []*Logger) {
	l.output.emit(rec)
	for _, target := range targets {
		target.propagate(rec, forceful)
	}
}

// StartBuffering holds accepted records at this node until Flush.
func (l *Logger) StartBuffering() {
	l.mu.Lock()
	l.buffering = true
	l.mu.Unlock()
}

// IsBuffering reports whether the node is holding records
func (l *Logger) IsBuffering() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffering
}

// Buffered returns the number of held records
func (l *Logger) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buffer)
}

// Flush delivers held records in order. Flushed records are not held again
// by this node. With end set, buffering is switched off once every held
// record, including those arriving during the flush, has been delivered;
// otherwise records arriving afterwards are held again. A Flush called while
// another is delivering is folded into the running one.
func (l *Logger) Flush(end bool) {
	l.mu.Lock()
	if end {
		l.flushEnd = true
	}
	if l.flushing {
		l.flushAgain = true
		l.mu.Unlock()
		return
	}
	l.flushing = true

	for {
		pending := l.buffer
		l.buffer = nil
		l.flushAgain = false
		targets := l.forwards
		l.mu.Unlock()

		for _, b := range pending {
			l.deliver(b.record, b.forceful, targets)
		}

		l.mu.Lock()
		if len(l.buffer) == 0 || (!l.flushAgain && !l.flushEnd) {
			break
		}
	}

	if l.flushEnd {
		l.buffering = false
		l.flushEnd = false
	}
	l.flushing = false
	l.mu.Unlock()
}

// OnOutput registers fn to receive every record this node accepts and delivers.
func (l *Logger) OnOutput(fn func(Record)) ListenerID {
	return l.output.on(fn)
}

// RemoveListener unregisters an output listener. Unknown ids are ignored.
func (l *Logger) RemoveListener(id ListenerID) bool {
	return l.output.off(id)
}

// CreateChild returns a new node whose parent is this node's parent, or this
// node when it is a root.
func (l *Logger) CreateChild(name string, opts ...Option) *Logger {
	parent := l.parent
	if parent == nil {
		parent = l
	}
	return New(name, append(opts, WithParent(parent))...)
}

// Transports returns the transports currently attached to this node.
func (l *Logger) Transports() []Transport {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transport, 0, len(l.transports))
	for _, t := range l.transports {
		out = append(out, t)
	}
	return out
}

func (l *Logger) attachTransport(t Transport) {
	l.mu.Lock()
	if l.transports == nil {
		l.transports = make(map[uuid.UUID]Transport)
	}
	l.transports[t.ID()] = t
	l.mu.Unlock()
}

func (l *Logger) detachTransport(t Transport) {
	l.mu.Lock()
	delete(l.transports, t.ID())
	l.mu.Unlock()
}

// CreateFileTransport opens a file transport and attaches it to this node.
func (l *Logger) CreateFileTransport(cfg *FileConfig, opts ...FileOption) (*FileTransport, error) {
	t, err := NewFileTransport(cfg, opts...)
	if err != nil {
		return nil, err
	}
	t.Attach(l)
	return t, nil
}

// CreateConsoleTransport creates a console transport and attaches it to this node.
func (l *Logger) CreateConsoleTransport(cfg *ConsoleConfig) (*ConsoleTransport, error) {
	t, err := NewConsoleTransport(cfg)
	if err != nil {
		return nil, err
	}
	t.Attach(l)
	return t, nil
}
