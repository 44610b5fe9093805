package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates prefix-numbered ids: "ORD000001", "ORD000002", ...
//
// Unlike engine.FixedGenerator it never runs out, which suits scenarios
// whose length is not known up front.
//
// Thread-safety: SequenceIDs is safe for concurrent use.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix defaults to "ID".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "ID"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%06d", g.prefix, g.n)
}
