package camera

import (
	"sync"
	"time"
)

// MockResult is one scripted outcome of a WaitForFrames call.
type MockResult struct {
	Set *FrameSet
	Err error
}

// MockSession replays a scripted sequence of frame sets and errors, then
// reports ErrFrameTimeout once the script is exhausted.
type MockSession struct {
	mu      sync.Mutex
	results []MockResult
	next    int
	scale   float64
	closed  bool
}

// NewMockSession creates a session that yields the given results in order.
func NewMockSession(scale float64, results ...MockResult) *MockSession {
	return &MockSession{results: results, scale: scale}
}

func (s *MockSession) WaitForFrames(timeout time.Duration) (*FrameSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.results) {
		return nil, ErrFrameTimeout
	}
	r := s.results[s.next]
	s.next++
	return r.Set, r.Err
}

func (s *MockSession) DepthScale() float64 {
	return s.scale
}

func (s *MockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *MockSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// MockDriver hands out sessions, optionally failing the first FailConnects
// connection attempts to exercise retry paths.
type MockDriver struct {
	mu           sync.Mutex
	Sessions     []Session
	FailConnects int
	attempts     int
	handedOut    int
}

func (d *MockDriver) Connect(specs []StreamSpec) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	if d.attempts <= d.FailConnects {
		return nil, ErrConnect
	}
	if d.handedOut >= len(d.Sessions) {
		return nil, ErrConnect
	}
	s := d.Sessions[d.handedOut]
	d.handedOut++
	return s, nil
}

// Attempts returns the number of Connect calls made so far.
func (d *MockDriver) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}
