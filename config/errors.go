package config

import "errors"

var (
	// ErrInvalidConfig wraps every structural validation failure.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("config: duplicate node id")

	// ErrUnknownInput is returned when a node lists an input that is not declared.
	ErrUnknownInput = errors.New("config: unknown input")

	// ErrUnknownOutput is returned when the output field names an undeclared node.
	ErrUnknownOutput = errors.New("config: unknown output node")

	// ErrAmbiguousOutput is returned by OutputNode when no output is set and
	// the graph does not have exactly one sink.
	ErrAmbiguousOutput = errors.New("config: output node is ambiguous")

	// ErrCyclic is returned when the declared inputs form a cycle,
	// including a node that lists itself as an input.
	ErrCyclic = errors.New("config: graph contains a cycle")

	// ErrInvalidEnv is returned by ApplyEnv for a malformed override.
	ErrInvalidEnv = errors.New("config: invalid environment override")
)
