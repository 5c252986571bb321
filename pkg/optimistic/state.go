// Package optimistic keeps a server snapshot together with pending local
// changes, so a client can show an edit before the server confirms it.
package optimistic

import (
	"slices"
	"sync"
)

type change[T any] struct {
	token uint64
	delta func(T) T
}

// State holds the last snapshot the server confirmed and the local changes
// still in flight. The view is the snapshot with the pending changes replayed
// over it in the order they were applied.
type State[T any] struct {
	mu      sync.RWMutex
	server  T
	view    T
	pending []change[T]
	last    uint64
}

func New[T any](server T) *State[T] {
	return &State[T]{server: server, view: server}
}

// Apply adds a local change on top of the current view and returns the new
// view along with a token for Confirm or Reject.
func (s *State[T]) Apply(delta func(T) T) (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	s.pending = append(s.pending, change[T]{token: s.last, delta: delta})
	s.view = delta(s.view)
	return s.view, s.last
}

// Confirm adopts the server snapshot for the change behind token. Changes
// still in flight are replayed over it.
func (s *State[T]) Confirm(token uint64, server T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = server
	s.drop(token)
	s.rebuild()
}

// Reject drops the change behind token. The view is rebuilt from the snapshot
// and the remaining changes.
func (s *State[T]) Reject(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drop(token) {
		s.rebuild()
	}
}

func (s *State[T]) drop(token uint64) bool {
	i := slices.IndexFunc(s.pending, func(c change[T]) bool { return c.token == token })
	if i < 0 {
		return false
	}
	s.pending = slices.Delete(s.pending, i, i+1)
	return true
}

func (s *State[T]) rebuild() {
	s.view = s.server
	for _, c := range s.pending {
		s.view = c.delta(s.view)
	}
}

// View is what the client shows.
func (s *State[T]) View() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Server is the last confirmed snapshot.
func (s *State[T]) Server() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server
}

func (s *State[T]) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending) > 0
}
