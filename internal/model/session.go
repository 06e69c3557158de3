// Package model owns the inference boundary: the autoencoder and image
// classifier contracts, the session lifecycle that replaces ad-hoc
// "is the model loaded" globals, scoped tensor-buffer acquisition, and
// an HTTP client for sidecar inference backends.
package model

import (
	"context"
	"fmt"
	"sync"
)

// State is the model session lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ModelNotReadyError reports an inference attempt before the session
// reached Ready. The host should surface a "still initializing" state
// rather than a hard failure.
type ModelNotReadyError struct {
	State State
}

func (e *ModelNotReadyError) Error() string {
	return fmt.Sprintf("inference model not ready (session %s)", e.State)
}

// Loader produces the two inference backends. Implementations may load
// weights from disk, open a sidecar connection, or return fakes in tests.
type Loader interface {
	Load(ctx context.Context) (Autoencoder, ImageClassifier, error)
}

// Session holds the loaded inference backends and tracks their lifecycle
// through Unloaded → Loading → Ready (or Failed). One session is
// constructed by the host at startup and passed by reference into each
// pipeline call; there is no package-level model state.
type Session struct {
	mu      sync.Mutex
	state   State
	loadErr error
	ae      Autoencoder
	clf     ImageClassifier
}

// NewSession returns an unloaded session.
func NewSession() *Session {
	return &Session{state: StateUnloaded}
}

// Load runs the loader and transitions the session. A session that
// previously failed may be loaded again. Concurrent Load calls are
// serialized; a second Load while Ready is a no-op.
func (s *Session) Load(ctx context.Context, loader Loader) error {
	s.mu.Lock()
	if s.state == StateReady {
		s.mu.Unlock()
		return nil
	}
	if s.state == StateLoading {
		s.mu.Unlock()
		return fmt.Errorf("model load already in progress")
	}
	s.state = StateLoading
	s.mu.Unlock()

	ae, clf, err := loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.loadErr = err
		return fmt.Errorf("model load failed: %w", err)
	}
	s.ae, s.clf = ae, clf
	s.state = StateReady
	s.loadErr = nil
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadError returns the error from the last failed load, if any.
func (s *Session) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Autoencoder returns the sequence autoencoder, or a ModelNotReadyError
// if the session is not Ready.
func (s *Session) Autoencoder() (Autoencoder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, &ModelNotReadyError{State: s.state}
	}
	return s.ae, nil
}

// Classifier returns the image classifier, or a ModelNotReadyError if
// the session is not Ready.
func (s *Session) Classifier() (ImageClassifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, &ModelNotReadyError{State: s.state}
	}
	return s.clf, nil
}

// Dispose releases the backends and returns the session to Unloaded.
// Backends implementing io.Closer are closed.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.ae.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	if c, ok := s.clf.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	s.ae, s.clf = nil, nil
	s.state = StateUnloaded
	s.loadErr = nil
}
