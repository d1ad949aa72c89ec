package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/pathrec/bfs"
	"github.com/katalvlaran/pathrec/config"
	"github.com/katalvlaran/pathrec/core"
	"github.com/katalvlaran/pathrec/dfs"
	"github.com/katalvlaran/pathrec/recorder"
	"github.com/katalvlaran/pathrec/simulate"
	"github.com/katalvlaran/pathrec/stats"
	"github.com/katalvlaran/pathrec/store"
	"github.com/katalvlaran/pathrec/telemetry"
	"github.com/katalvlaran/pathrec/tracker"
)

const metricsNamespace = "pathrec"

var (
	errInconsistent = errors.New("no live path reaches the output")
	errNoStore      = errors.New("store directory does not exist")
)

// app carries the state shared by all subcommands.
type app struct {
	out, errOut io.Writer
	logLevel    string
	logFormat   string
	logger      *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "pathrec",
		Short:         "Record which nodes of sampled sub-architectures reach the output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(a.logLevel, a.logFormat, a.errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(a.topoCmd(), a.checkCmd(), a.simulateCmd(), a.weightsCmd())

	return root
}

func (a *app) topoCmd() *cobra.Command {
	var graphPath string
	cmd := &cobra.Command{
		Use:   "topo",
		Short: "Print the nodes of a graph file in recording order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(graphPath)
			if err != nil {
				return err
			}
			g, err := f.Graph()
			if err != nil {
				return err
			}
			order, err := dfs.TopologicalSort(g)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, strings.Join(order, " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "graph file (YAML)")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	var (
		graphPath string
		maxDepth  int
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe whether the high-probability sub-architecture reaches the output, show one sample path and list nodes that never can",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(graphPath)
			if err != nil {
				return err
			}
			g, err := f.Graph()
			if err != nil {
				return err
			}
			out, err := f.OutputNode()
			if err != nil {
				return err
			}
			rec, err := recorder.FromGraph(g, tracker.WithLogger(a.logger))
			if err != nil {
				return err
			}
			probe, err := simulate.NewSampler(rec.Nodes(), f.Probabilities(), out, simulate.WithProbe())
			if err != nil {
				return err
			}
			ok, err := rec.IsConsistent(cmd.Context(), probe)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: consistent=%t\n", f.Name, ok)
			path, err := a.samplePath(cmd.Context(), g, f.Probabilities(), out, maxDepth)
			if err != nil {
				return err
			}
			if path != nil {
				fmt.Fprintf(a.out, "sample path: %s\n", strings.Join(path, " → "))
			} else {
				fmt.Fprintf(a.out, "sample path: none reaches %s\n", out)
			}
			dead, err := bfs.Unreachable(g, out, bfs.WithContext(cmd.Context()))
			if err != nil {
				return err
			}
			if len(dead) > 0 {
				a.logger.Warn("nodes never reach the output", slog.String("output", out), slog.Any("nodes", dead))
				fmt.Fprintf(a.out, "unreachable from %s: %s\n", out, strings.Join(dead, " "))
			}
			if !ok {
				return fmt.Errorf("%s: %w", out, errInconsistent)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "graph file (YAML)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "longest sample path in edges (0 = unlimited)")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

// samplePath walks downstream from each source in turn, skipping nodes that
// are never sampled, and returns the first path found to out. A nil path
// means no source reaches out within maxDepth.
func (a *app) samplePath(ctx context.Context, g *core.Graph, probs map[string]float64, out string, maxDepth int) ([]string, error) {
	for _, src := range g.Sources() {
		if probs[src] == 0 {
			continue
		}
		res, err := bfs.BFS(g, src,
			bfs.WithContext(ctx),
			bfs.WithMaxDepth(maxDepth),
			bfs.WithFilterNeighbor(func(_, next string) bool { return probs[next] > 0 }),
			bfs.WithOnVisit(func(id string, depth int) error {
				a.logger.Debug("path search", slog.String("source", src), slog.String("node", id), slog.Int("depth", depth))
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
		if res.Reached(out) {
			return res.PathTo(out)
		}
	}

	return nil, nil
}

type storeFlags struct {
	dir    string
	format string
	key    string
}

func (s *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.dir, "store", "", "snapshot store directory")
	cmd.Flags().StringVar(&s.format, "store-format", "badger", "snapshot store backend: badger or yaml")
	cmd.Flags().StringVar(&s.key, "key", "", "snapshot key")
}

func (s *storeFlags) open(logger *slog.Logger) (store.Store, error) {
	switch s.format {
	case "badger":
		cfg := store.DefaultBadgerConfig(s.dir)
		cfg.Logger = logger
		return store.OpenBadger(cfg)
	case "yaml":
		return store.NewFileStore(s.dir)
	default:
		return nil, fmt.Errorf("unknown store format %q", s.format)
	}
}

// openExisting opens the store for reading only; both backends would
// otherwise create an empty directory for a mistyped --store.
func (s *storeFlags) openExisting(logger *slog.Logger) (store.Store, error) {
	info, err := os.Stat(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.dir, errNoStore)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", s.dir)
	}

	return s.open(logger)
}

func (a *app) simulateCmd() *cobra.Command {
	var (
		graphPath   string
		metricsPath string
		run         config.Run
		sf          storeFlags
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated search and print posterior node weights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(graphPath)
			if err != nil {
				return err
			}
			// flags > environment > file
			if err = config.ApplyEnv(&f.Run); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("iterations") {
				f.Run.Iterations = run.Iterations
			}
			if flags.Changed("batch") {
				f.Run.Batch = run.Batch
			}
			if flags.Changed("workers") {
				f.Run.Workers = run.Workers
			}
			if flags.Changed("seed") {
				f.Run.Seed = run.Seed
			}

			runner, err := simulate.FromConfig(f, simulate.WithLogger(a.logger))
			if err != nil {
				return err
			}
			res, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "run %s: %d iterations\n", res.RunID, res.Iterations)
			printWeights(a.out, res.Weights)

			if sf.dir != "" {
				key := sf.key
				if key == "" {
					key = res.RunID
				}
				st, err := sf.open(a.logger)
				if err != nil {
					return err
				}
				defer st.Close()
				if err = st.Save(cmd.Context(), key, res.Snapshot); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "snapshot saved: %s\n", key)
			}
			if metricsPath != "" {
				c, err := telemetry.NewCollector(metricsNamespace, res.Recorder)
				if err != nil {
					return err
				}
				reg := prometheus.NewRegistry()
				if err = reg.Register(c); err != nil {
					return err
				}
				if err = telemetry.WriteTextfile(metricsPath, reg); err != nil {
					return err
				}
				a.logger.Info("metrics written", slog.String("path", metricsPath))
			}
			return nil
		},
	}
	def := config.DefaultRun()
	cmd.Flags().StringVar(&graphPath, "graph", "", "graph file (YAML)")
	cmd.Flags().IntVar(&run.Iterations, "iterations", def.Iterations, "iterations to run")
	cmd.Flags().IntVar(&run.Batch, "batch", def.Batch, "batch width per iteration")
	cmd.Flags().IntVar(&run.Workers, "workers", def.Workers, "parallel workers")
	cmd.Flags().Int64Var(&run.Seed, "seed", def.Seed, "base random seed")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "write Prometheus textfile metrics here")
	sf.register(cmd)
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func (a *app) weightsCmd() *cobra.Command {
	var sf storeFlags
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Print the posterior weights of a stored snapshot, or list stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sf.openExisting(a.logger)
			if err != nil {
				return err
			}
			defer st.Close()

			if sf.key == "" {
				keys, err := st.Keys(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(a.out, k)
				}
				return nil
			}
			snap, err := st.Load(cmd.Context(), sf.key)
			if err != nil {
				return err
			}
			if snap.GlobalEstimate == nil {
				return fmt.Errorf("%s: %w", sf.key, stats.ErrNotAvailable)
			}
			if len(snap.GlobalEstimate) != len(snap.RevNodeIndex) {
				return fmt.Errorf("%s: %w", sf.key, recorder.ErrSnapshotMismatch)
			}
			weights := make(map[string]float64, len(snap.RevNodeIndex))
			for i, id := range snap.RevNodeIndex {
				weights[id] = snap.GlobalEstimate[i]
			}
			fmt.Fprintf(a.out, "%s: %d iterations\n", sf.key, snap.IterationCount)
			printWeights(a.out, weights)
			return nil
		},
	}
	sf.register(cmd)
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

// printWeights prints one "node weight" line per node, sorted by node.
func printWeights(w io.Writer, weights map[string]float64) {
	nodes := make([]string, 0, len(weights))
	for id := range weights {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	for _, id := range nodes {
		fmt.Fprintf(w, "%-16s %.4f\n", id, weights[id])
	}
}
