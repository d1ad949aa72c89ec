// SPDX-License-Identifier: MIT
// Package: pathrec/builder
//
// impl_layered.go - implementation of Layered(depth, width, p).
//
// Model:
//   - depth layers of width nodes; node j of layer l has index l*width + j.
//   - Every pair (u in layer l, v in layer l+1) becomes an edge u→v with
//     independent probability p.
//   - A node of layer l+1 left without producers is wired to one node of
//     layer l: rng.Intn(width) when stochastic, else node j of layer l.
//
// Contract:
//   - depth ≥ 2, width ≥ 1 (else ErrTooFewVertices).
//   - 0 ≤ p ≤ 1 (else ErrInvalidProbability).
//   - cfg.rng must be non-nil when 0 < p < 1 (else ErrNeedRandSource).
//
// Complexity:
//   - Time: O(depth*width) vertices + O(depth*width²) Bernoulli trials.
//
// Determinism:
//   - Stable trial order: layer asc, v asc, u asc.

package builder

import (
	"fmt"

	"github.com/katalvlaran/pathrec/core"
)

const (
	methodLayered = "Layered"
	minDepth      = 2
	minWidth      = 1
	probMin       = 0.0
	probMax       = 1.0
)

// Layered returns a Constructor that samples a layered DAG.
func Layered(depth, width int, p float64) Constructor {
	return func(g *core.Graph, cfg builderConfig) error {
		// 1) Validate parameters early (zero side-effects on invalid input).
		if depth < minDepth {
			return fmt.Errorf("%s: depth=%d < min=%d: %w", methodLayered, depth, minDepth, ErrTooFewVertices)
		}
		if width < minWidth {
			return fmt.Errorf("%s: width=%d < min=%d: %w", methodLayered, width, minWidth, ErrTooFewVertices)
		}
		if p < probMin || p > probMax {
			return fmt.Errorf("%s: p=%.6f not in [%.1f,%.1f]: %w", methodLayered, p, probMin, probMax, ErrInvalidProbability)
		}
		stochastic := p > probMin && p < probMax
		if stochastic && cfg.rng == nil {
			return fmt.Errorf("%s: rng is required: %w", methodLayered, ErrNeedRandSource)
		}

		// 2) Vertices, layer by layer.
		if err := addVertices(g, cfg, methodLayered, 0, depth*width); err != nil {
			return err
		}

		// 3) Edges between consecutive layers.
		for l := 0; l+1 < depth; l++ {
			for j := 0; j < width; j++ {
				v := cfg.idFn((l+1)*width + j)
				linked := false
				for i := 0; i < width; i++ {
					keep := p == probMax
					if stochastic {
						keep = cfg.rng.Float64() < p
					}
					if !keep {
						continue
					}
					if err := addEdge(g, methodLayered, cfg.idFn(l*width+i), v); err != nil {
						return err
					}
					linked = true
				}
				if linked {
					continue
				}
				// 4) Guarantee at least one producer.
				src := j
				if cfg.rng != nil {
					src = cfg.rng.Intn(width)
				}
				if err := addEdge(g, methodLayered, cfg.idFn(l*width+src), v); err != nil {
					return err
				}
			}
		}

		return nil
	}
}
