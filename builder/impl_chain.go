// SPDX-License-Identifier: MIT
// Package: pathrec/builder
//
// impl_chain.go - Chain(n) and Diamond() constructors.
//
// Contract:
//   - Chain: n ≥ 1 (else ErrTooFewVertices); edges (i-1) → i for i=1..n-1.
//   - Diamond: fixed 4 vertices, edges 0→1, 0→2, 1→3, 2→3.
//   - Vertices are added via cfg.idFn in ascending index order.
//
// Complexity:
//   - Chain: O(n) vertices + O(n-1) edges. Diamond: O(1).

package builder

import (
	"fmt"

	"github.com/katalvlaran/pathrec/core"
)

// File-local constants for method tagging and parameter minima.
const (
	methodChain   = "Chain"
	methodDiamond = "Diamond"
	minChainNodes = 1
)

// Chain returns a Constructor that builds the linear pipeline 0 → 1 → … → n-1.
func Chain(n int) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if n < minChainNodes {
			return fmt.Errorf("%s: n=%d < min=%d: %w", methodChain, n, minChainNodes, ErrTooFewVertices)
		}
		if err := addVertices(g, cfg, methodChain, 0, n); err != nil {
			return err
		}
		// Emit edges 0->1->2->...->(n-1) in stable order.
		for i := 1; i < n; i++ {
			if err := addEdge(g, methodChain, cfg.idFn(i-1), cfg.idFn(i)); err != nil {
				return err
			}
		}

		return nil
	}
}

// Diamond returns a Constructor that builds a two-branch cell: one input
// (0) feeding two parallel nodes (1, 2) that merge into one output (3).
func Diamond() Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		if err := addVertices(g, cfg, methodDiamond, 0, 4); err != nil {
			return err
		}
		for _, e := range [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}} {
			if err := addEdge(g, methodDiamond, cfg.idFn(e[0]), cfg.idFn(e[1])); err != nil {
				return err
			}
		}

		return nil
	}
}

// addVertices inserts cfg.idFn(from..to-1) in ascending order.
func addVertices(g *core.Graph, cfg builderConfig, method string, from, to int) error {
	for i := from; i < to; i++ {
		id := cfg.idFn(i)
		if err := g.AddVertex(id); err != nil {
			return fmt.Errorf("%s: AddVertex(%s): %w", method, id, err)
		}
	}

	return nil
}

// addEdge inserts u→v, wrapping failures with the constructor name.
func addEdge(g *core.Graph, method, u, v string) error {
	if _, err := g.AddEdge(u, v); err != nil {
		return fmt.Errorf("%s: AddEdge(%s→%s): %w", method, u, v, err)
	}

	return nil
}
