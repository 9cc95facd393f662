// Package completion provides a single-use result slot that one goroutine
// settles and any number of goroutines wait on.
package completion

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyFinished is returned when settling a Source that is already settled.
var ErrAlreadyFinished = errors.New("completion: already finished")

type state uint8

const (
	pending state = iota
	resolved
	rejected
)

// Source is settled exactly once with either a value or an error.
type Source[T any] struct {
	mu    sync.Mutex
	state state
	value T
	err   error
	done  chan struct{}
}

// New creates an unsettled Source
func New[T any]() *Source[T] {
	return &Source[T]{done: make(chan struct{})}
}

// Resolve settles the source with a value. Later settle calls are ignored.
func (s *Source[T]) Resolve(value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != pending {
		return ErrAlreadyFinished
	}
	s.state = resolved
	s.value = value
	close(s.done)
	return nil
}

// Reject settles the source with an error. Later settle calls are ignored.
func (s *Source[T]) Reject(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != pending {
		return ErrAlreadyFinished
	}
	s.state = rejected
	s.err = err
	close(s.done)
	return nil
}

// Done is closed once the source is settled
func (s *Source[T]) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the source settles or ctx is done.
func (s *Source[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.value, s.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// IsFinished reports whether the source has been settled either way
func (s *Source[T]) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != pending
}

// IsResolved reports whether the source settled with a value
func (s *Source[T]) IsResolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == resolved
}

// IsRejected reports whether the source settled with an error
func (s *Source[T]) IsRejected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == rejected
}
