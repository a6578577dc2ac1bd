package mrw

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store threads state through Reduce so callers don't have to hold a
// mutable variable themselves. It owns the latest *State behind a
// mutex; every snapshot it hands out is immutable.
type Store struct {
	logger *logrus.Logger

	mu       sync.Mutex
	state    *State
	onChange func(*State)
}

// NewStore constructs a store initialized with the canonical initial
// state. A nil logger discards logs.
func NewStore(logger *logrus.Logger) *Store {
	if logger == nil {
		logger = discardLogger()
	}
	return &Store{
		logger: logger,
		state:  NewInitialState(),
	}
}

// OnChange registers a callback invoked after every dispatch that
// produced a new state. Used by UIs to trigger re-renders; reference
// inequality of the snapshot signals the change.
func (s *Store) OnChange(fn func(*State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns the latest state snapshot.
func (s *Store) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch advances the store by one action.
func (s *Store) Dispatch(action Action) error {
	s.mu.Lock()
	next, err := Reduce(action, s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	changed := next != s.state
	s.state = next
	fn := s.onChange
	s.mu.Unlock()

	if action != nil {
		s.logger.WithFields(logrus.Fields{
			"action":  action.ActionType(),
			"changed": changed,
		}).Debug("dispatched action")
	}
	if changed && fn != nil {
		fn(next)
	}
	return nil
}

// Dispatcher adapts the store to the DispatchFunc signature used by
// thunks and the batcher. Reduction errors are logged, not returned:
// they indicate malformed actions, which action creators prevent.
func (s *Store) Dispatcher() DispatchFunc {
	return func(a Action) {
		if err := s.Dispatch(a); err != nil {
			s.logger.WithError(err).Error("dispatch failed")
		}
	}
}

// discardLogger returns a logger that drops everything, for components
// constructed without one.
func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
