package testfixtures

import (
	"strconv"
	"sync"
)

// IDGenerator hands out "<prefix>-1", "<prefix>-2", ... so tests can predict
// the identifiers a service will assign.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    uint64
}

// NewIDGenerator builds a generator for the given prefix. An empty prefix
// defaults to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return g.prefix + "-" + strconv.FormatUint(g.seq, 10)
}

// NextFunc adapts the generator to the func() string shape the services
// expect. A nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// SetPrefix changes the prefix for subsequently issued identifiers.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	g.prefix = prefix
	g.mu.Unlock()
}

// SetCounter rewinds or fast-forwards the sequence; the next identifier is
// numbered counter+1.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.seq = counter
	g.mu.Unlock()
}
