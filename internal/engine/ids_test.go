package engine

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	gen := UUIDv7Generator{}
	token := gen.Generate()

	assert.Len(t, token, 36)
	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Uniqueness(t *testing.T) {
	gen := UUIDv7Generator{}
	const iterations = 1000

	tokens := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		token := gen.Generate()
		require.False(t, tokens[token], "token %s generated twice", token)
		tokens[token] = true
	}

	assert.Equal(t, iterations, len(tokens), "all tokens should be unique")
}

func TestUUIDv7Generator_Concurrent(t *testing.T) {
	gen := UUIDv7Generator{}
	const goroutines = 100

	tokens := make(chan string, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- gen.Generate()
		}()
	}

	wg.Wait()
	close(tokens)

	// Verify all tokens are unique
	seen := make(map[string]bool)
	for token := range tokens {
		require.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}

	assert.Equal(t, goroutines, len(seen))
}

func TestOrderTokenGenerator_Format(t *testing.T) {
	gen := OrderTokenGenerator{}
	for i := 0; i < 200; i++ {
		token := gen.Generate()
		require.Len(t, token, OrderTokenLength)
		require.Regexp(t, `^[0-9A-Z]{9}$`, token)
	}
}

func TestOrderTokenGenerator_Uniqueness(t *testing.T) {
	gen := OrderTokenGenerator{}
	const iterations = 5000

	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		token := gen.Generate()
		require.False(t, seen[token], "token %s generated twice", token)
		seen[token] = true
	}
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("ORDER0001", "ORDER0002", "ORDER0003")

	assert.Equal(t, "ORDER0001", gen.Generate())
	assert.Equal(t, "ORDER0002", gen.Generate())
	assert.Equal(t, "ORDER0003", gen.Generate())
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedGenerator("ORDER0001")
	assert.Equal(t, "ORDER0001", gen.Generate())

	assert.Panics(t, func() {
		gen.Generate()
	}, "should panic when all tokens exhausted")
}

func TestFixedGenerator_EmptyTokens(t *testing.T) {
	gen := NewFixedGenerator()
	assert.Panics(t, func() {
		gen.Generate()
	})
}
