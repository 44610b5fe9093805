package engine

import (
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for cart lines and orders.
// Implemented by UUIDv7Generator, OrderTokenGenerator and FixedGenerator.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 strings. Used for cart
// line identities, which never leave the device.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// OrderTokenLength is the length of an order token.
const OrderTokenLength = 9

// OrderTokenGenerator generates short, human-scannable order ids: nine
// upper-case base-36 characters taken from the random tail of a UUIDv7.
// Staff read these aloud and customers compare them on screen.
type OrderTokenGenerator struct{}

// Generate returns a new order token such as "K3Z9QX0AB".
func (g OrderTokenGenerator) Generate() string {
	id := uuid.Must(uuid.NewV7())
	// Bytes 8..15 carry the variant bits plus 62 random bits.
	n := new(big.Int).SetBytes(id[8:])
	s := strings.ToUpper(n.Text(36))
	if len(s) < OrderTokenLength {
		s = strings.Repeat("0", OrderTokenLength-len(s)) + s
	}
	return s[len(s)-OrderTokenLength:]
}

// FixedGenerator returns predetermined ids for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("ORDER0001", "ORDER0002")
//	gen.Generate() // "ORDER0001"
//	gen.Generate() // "ORDER0002"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed, which catches a test that
// created more ids than it declared.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
