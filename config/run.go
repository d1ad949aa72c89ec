package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvIterations = "PATHREC_ITERATIONS"
	EnvBatch      = "PATHREC_BATCH"
	EnvWorkers    = "PATHREC_WORKERS"
	EnvSeed       = "PATHREC_SEED"
)

// Run holds the simulation parameters.
type Run struct {
	Iterations int   `yaml:"iterations" json:"iterations" validate:"gte=1"`
	Batch      int   `yaml:"batch" json:"batch" validate:"gte=1"`
	Workers    int   `yaml:"workers" json:"workers" validate:"gte=1,lte=256"`
	Seed       int64 `yaml:"seed" json:"seed"`
}

// DefaultRun returns the parameters used when a file leaves them unset.
func DefaultRun() Run {
	return Run{
		Iterations: 100,
		Batch:      8,
		Workers:    1,
		Seed:       1,
	}
}

// Validate checks the run parameters.
func (r Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, describe(err))
	}

	return nil
}

// ApplyEnv overrides r from PATHREC_* environment variables. Unset
// variables leave the field alone; a malformed value is an error and
// leaves r untouched.
func ApplyEnv(r *Run) error {
	next := *r
	for _, o := range []struct {
		key string
		dst *int
	}{
		{EnvIterations, &next.Iterations},
		{EnvBatch, &next.Batch},
		{EnvWorkers, &next.Workers},
	} {
		v := os.Getenv(o.key)
		if v == "" {
			continue
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, o.key, v)
		}
		*o.dst = i
	}
	if v := os.Getenv(EnvSeed); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvSeed, v)
		}
		next.Seed = s
	}
	*r = next

	return nil
}
