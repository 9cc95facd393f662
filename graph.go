package logtree

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrCycle is returned by Attach when the new edge would let a record reach
// a node it already passed through.
var ErrCycle = errors.New("logtree: attach would create a cycle")

// graphMu serializes forward-set mutation so the reachability check and the
// edge insertion are atomic across the whole graph.
var graphMu sync.Mutex

// Attach makes other forward its output into this node. Attaching twice is a
// no-op. An edge that would close a cycle, including self-attachment, is rejected.
func (l *Logger) Attach(other *Logger) error {
	if other == nil {
		return fmtErrorf("cannot attach a nil logger")
	}

	graphMu.Lock()
	defer graphMu.Unlock()

	if slices.Contains(other.targets(), l) {
		return nil
	}
	if reachable(l, other) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, describe(other), describe(l))
	}

	other.mu.Lock()
	next := make([]*Logger, len(other.forwards), len(other.forwards)+1)
	copy(next, other.forwards)
	other.forwards = append(next, l)
	other.mu.Unlock()
	return nil
}

// Detach stops other from forwarding into this node. The constructor parent
// edge is permanent and detaching it is a no-op.
func (l *Logger) Detach(other *Logger) {
	if other == nil || other.parent == l {
		return
	}

	graphMu.Lock()
	defer graphMu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()
	idx := slices.Index(other.forwards, l)
	if idx < 0 {
		return
	}
	next := make([]*Logger, 0, len(other.forwards)-1)
	next = append(next, other.forwards[:idx]...)
	other.forwards = append(next, other.forwards[idx+1:]...)
}

// Targets returns the nodes this node forwards into, in attachment order.
func (l *Logger) Targets() []*Logger {
	return slices.Clone(l.targets())
}

func (l *Logger) targets() []*Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.forwards
}

// reachable reports whether to can be reached from from by following forward edges.
func reachable(from, to *Logger) bool {
	seen := make(map[*Logger]struct{})
	stack := []*Logger{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, n.targets()...)
	}
	return false
}

func describe(l *Logger) string {
	if l.name != "" {
		return l.name
	}
	return l.id.String()
}
