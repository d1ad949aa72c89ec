package builder

import (
	"fmt"
	"strconv"
)

// IDFn maps a vertex's zero-based construction index to its node ID.
// It must be pure: the same idx always yields the same ID.
type IDFn func(idx int) string

// DefaultIDFn returns the decimal index: 0→"0", 42→"42".
func DefaultIDFn(idx int) string {
	return strconv.Itoa(idx)
}

// SymbolIDFn names the first 26 nodes "A".."Z". Small fixtures such as
// Diamond read better as A→{B,C}→D. Panics outside [0,25].
func SymbolIDFn(idx int) string {
	if idx < 0 || idx > 25 {
		panic(fmt.Sprintf("builder: SymbolIDFn index %d outside [0,25]", idx))
	}

	return string('A' + rune(idx))
}

// SymbolNumberIDFn returns prefix + index: "n0", "n1", ...
// Panics on a negative index.
func SymbolNumberIDFn(prefix string) IDFn {
	return func(idx int) string {
		if idx < 0 {
			panic(fmt.Sprintf("builder: SymbolNumberIDFn index %d < 0", idx))
		}
		return prefix + strconv.Itoa(idx)
	}
}

// LayerIDFn names node idx of a layered cell by its layer and position,
// "l<layer>p<pos>", so IDs survive a change of width in log output.
// It matches the index layout of Layered(depth, width, p).
// Panics on width < 1 or a negative index.
func LayerIDFn(width int) IDFn {
	if width < 1 {
		panic(fmt.Sprintf("builder: LayerIDFn width %d < 1", width))
	}

	return func(idx int) string {
		if idx < 0 {
			panic(fmt.Sprintf("builder: LayerIDFn index %d < 0", idx))
		}
		return "l" + strconv.Itoa(idx/width) + "p" + strconv.Itoa(idx%width)
	}
}

// WithSymbNumb sets the ID scheme to SymbolNumberIDFn(prefix).
func WithSymbNumb(prefix string) BuilderOption {
	return WithIDScheme(SymbolNumberIDFn(prefix))
}

// WithSymbolIDs sets the ID scheme to SymbolIDFn.
func WithSymbolIDs() BuilderOption {
	return WithIDScheme(SymbolIDFn)
}

// WithLayerIDs sets the ID scheme to LayerIDFn(width). Pass the same
// width as the Layered constructor.
func WithLayerIDs(width int) BuilderOption {
	return WithIDScheme(LayerIDFn(width))
}
