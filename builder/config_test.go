// Package builder contains unit tests for the configuration primitives
// (builderConfig and BuilderOption) to ensure correct application and override behavior.
package builder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIDSchemeOptions verifies that ID scheme options are applied in order.
func TestIDSchemeOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "7", newBuilderConfig().idFn(7))
	assert.Equal(t, "A", newBuilderConfig(WithSymbolIDs()).idFn(0))
	assert.Equal(t, "n4", newBuilderConfig(WithSymbNumb("n")).idFn(4))
	assert.Equal(t, "l2p1", newBuilderConfig(WithLayerIDs(4)).idFn(9))
	// last option wins
	assert.Equal(t, "D", newBuilderConfig(WithSymbNumb("n"), WithSymbolIDs()).idFn(3))
}

// TestRNGOptions verifies reproducibility with WithSeed and WithRand.
func TestRNGOptions(t *testing.T) {
	t.Parallel()

	assert.Nil(t, newBuilderConfig().rng, "deterministic by default")

	a := newBuilderConfig(WithSeed(123)).rng
	b := newBuilderConfig(WithSeed(123)).rng
	assert.Equal(t, a.Int63(), b.Int63())

	r := rand.New(rand.NewSource(1))
	assert.Same(t, r, newBuilderConfig(WithRand(r)).rng)
}
