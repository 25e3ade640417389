package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joshharrison/pertsim/internal/cliutil"
	"github.com/joshharrison/pertsim/internal/dagmodel"
	"github.com/joshharrison/pertsim/internal/ioformat"
	"github.com/joshharrison/pertsim/internal/logging"
	"github.com/joshharrison/pertsim/internal/report"
	"github.com/joshharrison/pertsim/internal/simulate"
	"github.com/joshharrison/pertsim/internal/ui"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagOut     string
	flagSeed    int64
	flagHasSeed bool
	flagRuns    int
	flagWorkers int
	flagJSON    bool
)

// exitCodeError carries the exit code a RunE failure should produce,
// distinguishing input/structural errors (1) from runtime errors (2).
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func main() {
	rootCmd := &cobra.Command{
		Use:   "pertsim",
		Short: "Monte Carlo critical-path simulation for project task timelines",
		Long: `pertsim reads a task table (three-point PERT estimates and
dependencies), builds the dependency DAG, and runs a Monte Carlo
simulation of project duration, reporting percentiles, buffers,
critical-path sensitivity, and risk analysis.`,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to TOML configuration file")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output on stdout")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(resultCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the exit code §6 requires: 1 for
// input/structural DAG errors, 2 for runtime errors, 130 for
// cancellation, 1 as the default for anything else (flag parsing, I/O).
func exitCodeFor(err error) int {
	if ec, ok := err.(*exitCodeError); ok {
		return ec.code
	}
	return 1
}

func loadDAG(path string) (*dagmodel.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &exitCodeError{code: 1, err: fmt.Errorf("open task table: %w", err)}
	}
	defer f.Close()

	tasks, err := ioformat.ReadTaskTable(f)
	if err != nil {
		return nil, &exitCodeError{code: 1, err: err}
	}

	dag, err := dagmodel.Build(tasks)
	if err != nil {
		return nil, &exitCodeError{code: 1, err: err}
	}
	return dag, nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <task-table.csv>",
		Short: "Build the DAG and run the Monte Carlo simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ioformat.LoadConfig(flagConfig)
			if err != nil {
				return &exitCodeError{code: 1, err: fmt.Errorf("load config: %w", err)}
			}
			cfg = ioformat.ApplyFlagOverrides(cfg, flagRuns, flagWorkers, flagSeed, flagHasSeed)

			dag, err := loadDAG(args[0])
			if err != nil {
				return err
			}

			outDir := flagOut
			if outDir == "" {
				outDir = "."
			}

			lg := logging.New(outDir, logging.ParseLevel("info"))
			defer lg.Close()

			if !flagJSON {
				ui.PrintLogo()
				fmt.Printf("%s %s tasks, %s trials\n",
					ui.BoldCyan("pertsim:"), ui.Bold(dag.Len()), ui.Bold(cfg.SimulationRuns))
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				if !flagJSON {
					fmt.Fprintf(os.Stderr, "\n%s\n", ui.Yellow("received interrupt, cancelling..."))
				}
				cancel()
			}()

			simCfg := simulate.Config{
				Runs:    cfg.SimulationRuns,
				Seed:    uint64(cfg.Seed),
				HasSeed: cfg.HasSeed,
				Workers: cfg.Workers,
				Logger:  lg,
				Progress: func(completed, total int) {
					if !flagJSON {
						fmt.Fprintf(os.Stderr, "\r%s", ui.ProgressBar(completed, total, 30))
					}
				},
			}

			simResult, err := simulate.Run(ctx, dag, simCfg)
			if err != nil {
				return &exitCodeError{code: 2, err: fmt.Errorf("simulation: %w", err)}
			}
			if !flagJSON {
				fmt.Fprintln(os.Stderr)
			}

			snap := simResult.Aggregate.Finalize()
			res := report.Build(dag, snap, simResult.SeedUsed, simResult.TrialsCompleted, simResult.Partial)

			if err := ioformat.WriteResultCSVs(outDir, res); err != nil {
				return &exitCodeError{code: 2, err: fmt.Errorf("write CSV results: %w", err)}
			}
			jsonPath := filepath.Join(outDir, "result.json")
			if err := ioformat.WriteResultJSON(jsonPath, res); err != nil {
				return &exitCodeError{code: 2, err: fmt.Errorf("write JSON result: %w", err)}
			}

			if flagJSON {
				return outputJSON(res)
			}
			printSummary(res)

			if res.Meta.Partial {
				return &exitCodeError{code: 130, err: fmt.Errorf("cancelled after %d/%d trials", res.Meta.NTrialsCompleted, cfg.SimulationRuns)}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOut, "out", "", "Directory to write results into (default: current directory)")
	cmd.Flags().Int64Var(&flagSeed, "seed", 0, "Master PRNG seed")
	cmd.Flags().IntVar(&flagRuns, "runs", 0, "Number of Monte Carlo trials (overrides config)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Worker goroutine count (overrides config)")

	// --seed being set at all counts as HasSeed, whether or not it equals 0.
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		flagHasSeed = cmd.Flags().Changed("seed")
		return nil
	}

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <task-table.csv>",
		Short: "Validate a task table and DAG without running a simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dag, err := loadDAG(args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(map[string]any{"valid": true, "task_count": dag.Len()})
			}
			fmt.Printf("%s %d tasks, %d roots, %d leaves\n",
				ui.Green("valid:"), dag.Len(), len(dag.Roots()), len(dag.Leaves()))
			return nil
		},
	}
}

func resultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result",
		Short: "Inspect a previously written Result JSON file",
	}
	cmd.AddCommand(resultGetCmd())
	return cmd
}

func resultGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <result.json> <gjson-path>",
		Short: "Query a field out of a Result JSON file using gjson path syntax",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := cliutil.QueryResultFile(args[0], args[1])
			if err != nil {
				return &exitCodeError{code: 1, err: err}
			}
			fmt.Println(value)
			return nil
		},
	}
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(r *report.Result) {
	fmt.Printf("\n%s\n", ui.BoldWhite("Project duration"))
	fmt.Printf("  mean %.1f  stddev %.1f  P50 %.1f  P90 %.1f  P95 %.1f\n",
		r.Duration.Mean, r.Duration.StdDev, r.Percentiles["P50"], r.Percentiles["P90"], r.Percentiles["P95"])

	fmt.Printf("\n%s\n", ui.BoldWhite("Most critical tasks"))
	n := len(r.TaskCriticality)
	if n > 5 {
		n = 5
	}
	for _, tc := range r.TaskCriticality[:n] {
		fmt.Printf("  %s %s %s  %5.1f%%  %s\n",
			ui.PriorityIcon(tc.PriorityLevel), ui.TaskPrefix(tc.ID), tc.Name, tc.CriticalityPct, tc.PriorityLevel)
	}

	fmt.Printf("\n%s\n", ui.BoldWhite("Highest-impact tasks"))
	n = len(r.Sensitivity)
	if n > 5 {
		n = 5
	}
	for _, s := range r.Sensitivity[:n] {
		fmt.Printf("  %s %s impact %.2f  risk %s\n",
			ui.TaskPrefix(s.ID), s.Name, s.ImpactScore, ui.RiskLabel(s.RiskLevel))
	}

	if r.Meta.Partial {
		fmt.Fprintf(os.Stderr, "\n%s completed %d trials before cancellation\n", ui.Yellow("partial:"), r.Meta.NTrialsCompleted)
	}
}
