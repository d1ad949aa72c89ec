// Package config loads computation-graph descriptions and run parameters
// from YAML.
//
// A file declares nodes by ID, each with the IDs of its inputs and an
// optional sampling probability used by the simulator:
//
//	name: two-branch
//	output: out
//	nodes:
//	  - id: in
//	  - id: conv
//	    inputs: [in]
//	    probability: 0.7
//	  - id: out
//	    inputs: [in, conv]
//	run:
//	  iterations: 200
//	  batch: 16
//
// Parse validates struct constraints with validator/v10 and then the graph
// semantics (unique IDs, declared inputs, acyclicity).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/dfs"
)

// DefaultProbability is the sampling probability of a node that does not set one.
const DefaultProbability = 0.5

var validate = validator.New()

// Node is one computation node of the graph file.
type Node struct {
	ID          string   `yaml:"id" json:"id" validate:"required"`
	Inputs      []string `yaml:"inputs,omitempty" json:"inputs,omitempty" validate:"unique,dive,required"`
	Probability *float64 `yaml:"probability,omitempty" json:"probability,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// File is a parsed graph description.
type File struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
	Nodes  []Node `yaml:"nodes" json:"nodes" validate:"required,min=1,dive"`
	Run    Run    `yaml:"run" json:"run"`
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse decodes data, fills unset run parameters with defaults and
// validates the result. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	f := &File{Run: DefaultRun()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// Validate checks struct constraints, then graph semantics.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}

	declared := make(map[string]struct{}, len(f.Nodes))
	for _, n := range f.Nodes {
		if _, dup := declared[n.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		declared[n.ID] = struct{}{}
	}
	for _, n := range f.Nodes {
		for _, in := range n.Inputs {
			if in == n.ID {
				return fmt.Errorf("%w: node %q reads itself", ErrCyclic, n.ID)
			}
			if _, ok := declared[in]; !ok {
				return fmt.Errorf("%w: node %q reads %q", ErrUnknownInput, n.ID, in)
			}
		}
	}
	if f.Output != "" {
		if _, ok := declared[f.Output]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOutput, f.Output)
		}
	}

	g, err := f.Graph()
	if err != nil {
		return err
	}
	if _, err = dfs.TopologicalSort(g); err != nil {
		if errors.Is(err, dfs.ErrCycleDetected) {
			return fmt.Errorf("%w: %v", ErrCyclic, err)
		}
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Graph builds the computation graph: one vertex per node and an edge
// input→node for every declared input.
func (f *File) Graph() (*core.Graph, error) {
	g := core.NewGraph()
	for _, n := range f.Nodes {
		if err := g.AddVertex(n.ID); err != nil {
			return nil, fmt.Errorf("config: node %q: %w", n.ID, err)
		}
	}
	for _, n := range f.Nodes {
		for _, in := range n.Inputs {
			if _, err := g.AddEdge(in, n.ID); err != nil {
				return nil, fmt.Errorf("config: edge %s→%s: %w", in, n.ID, err)
			}
		}
	}

	return g, nil
}

// Probabilities maps every node ID to its sampling probability.
func (f *File) Probabilities() map[string]float64 {
	out := make(map[string]float64, len(f.Nodes))
	for _, n := range f.Nodes {
		p := DefaultProbability
		if n.Probability != nil {
			p = *n.Probability
		}
		out[n.ID] = p
	}

	return out
}

// OutputNode returns the declared output, or the graph's only sink.
func (f *File) OutputNode() (string, error) {
	if f.Output != "" {
		return f.Output, nil
	}
	g, err := f.Graph()
	if err != nil {
		return "", err
	}
	sinks := g.Sinks()
	if len(sinks) != 1 {
		return "", fmt.Errorf("%w: sinks %v", ErrAmbiguousOutput, sinks)
	}

	return sinks[0], nil
}

// describe flattens validator field errors into "Field: tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}

	return strings.Join(parts, "; ")
}
