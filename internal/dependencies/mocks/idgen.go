package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/teamladder/internal/dependencies/idgen"
)

// MockIDGenerator is a mock implementation of Generator for testing
type MockIDGenerator struct {
	mu sync.Mutex

	// IDs is a queue of results to return from NewID
	IDs   []string
	index int

	// Prefix is used to build sequential ids once the queue is exhausted
	Prefix  string
	counter int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a MockIDGenerator that falls back to "<prefix>-N" ids
func NewMockIDGenerator(prefix string) *MockIDGenerator {
	return &MockIDGenerator{Prefix: prefix}
}

// NewID returns the next queued id, or a sequential one if none remain
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index < len(g.IDs) {
		id := g.IDs[g.index]
		g.index++
		return id
	}
	g.counter++
	return fmt.Sprintf("%s-%d", g.Prefix, g.counter)
}

// Queue adds ids to the result queue
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.IDs = append(g.IDs, ids...)
}
