package session

import "sync"

// Gate tracks whether the widget is presented. It is a pure toggle with no
// transcript or network interaction, starts closed and is never persisted.
type Gate struct {
	mu   sync.Mutex
	open bool
}

// NewGate returns a closed gate.
func NewGate() *Gate {
	return &Gate{}
}

// Open marks the widget visible. Any caller may open the gate, independent of
// the widget's own close control.
func (g *Gate) Open() {
	g.mu.Lock()
	g.open = true
	g.mu.Unlock()
}

// Close marks the widget hidden.
func (g *Gate) Close() {
	g.mu.Lock()
	g.open = false
	g.mu.Unlock()
}

// IsOpen reports the current presentation state.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}
