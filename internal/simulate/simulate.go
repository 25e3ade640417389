// Package simulate orchestrates a full Monte Carlo run: partitioning N
// trials across W workers, seeding each trial independently of that
// partitioning so the per-trial samples are invariant to the worker count
// (see deriveTrialSeed for which merged fields follow exactly), running
// each worker's assigned trials against a shared read-only DAG, and
// merging the resulting per-worker aggregate states into one final
// Result.
package simulate

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/joshharrison/pertsim/internal/aggregate"
	"github.com/joshharrison/pertsim/internal/dagmodel"
	"github.com/joshharrison/pertsim/internal/logging"
	"github.com/joshharrison/pertsim/internal/trial"
)

// Config controls one orchestrated run.
type Config struct {
	Runs          int
	Seed          uint64
	HasSeed       bool
	Workers       int
	ProgressEvery int // log/callback every N completed trials; 0 selects the default of 1000
	Logger        *logging.Logger
	Progress      func(completed, total int)
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = 1000
	}
	return c
}

// Result is the orchestrator's output: the merged aggregate state plus
// the run metadata the report layer needs (meta.seed_used,
// meta.n_trials_completed, meta.partial).
type Result struct {
	Aggregate       *aggregate.State
	SeedUsed        uint64
	TrialsCompleted int
	Partial         bool
}

type workerOutcome struct {
	state     *aggregate.State
	completed int
	err       error
}

// Run drives the full simulation. It returns an error only for a runtime
// failure (NumericOverflow) during trial execution; cooperative
// cancellation via ctx instead yields a partial Result with no error,
// matching the spec's distinction between the two.
func Run(ctx context.Context, dag *dagmodel.DAG, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	seed := cfg.Seed
	if !cfg.HasSeed {
		seed = nondeterministicSeed()
	}

	workers := cfg.Workers
	if workers > cfg.Runs {
		workers = cfg.Runs
	}
	if workers < 1 {
		workers = 1
	}

	counts := partitionTrials(cfg.Runs, workers)
	offsets := partitionOffsets(counts)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var progressCount int64
	outcomes := make([]workerOutcome, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			outcomes[w] = runWorker(runCtx, dag, seed, offsets[w], counts[w], cfg, &progressCount, cancel)
		}(w)
	}
	wg.Wait()

	completed := 0
	states := make([]*aggregate.State, 0, workers)
	var firstErr error
	for _, o := range outcomes {
		completed += o.completed
		states = append(states, o.state)
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	merged, err := aggregate.MergeAll(states, dag.Len())
	if err != nil {
		return nil, err
	}

	partial := completed < cfg.Runs
	if partial && cfg.Logger != nil {
		cfg.Logger.Info("cancellation", "run cancelled before completion", "completed", completed, "total", cfg.Runs)
	}

	return &Result{
		Aggregate:       merged,
		SeedUsed:        seed,
		TrialsCompleted: completed,
		Partial:         partial,
	}, nil
}

// runWorker executes trials [offset, offset+n) of the global trial range.
// Each trial seeds its own *rand.Rand from deriveTrialSeed(masterSeed,
// globalIndex), so the sample drawn for a given global trial index never
// depends on offset or n — only on masterSeed and the index itself.
func runWorker(ctx context.Context, dag *dagmodel.DAG, masterSeed uint64, offset, n int, cfg Config, progressCount *int64, cancel context.CancelFunc) workerOutcome {
	state := aggregate.New(dag.Len())
	exec := trial.NewExecutor(dag)

	completed := 0
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		globalIdx := offset + i
		rng := rand.New(rand.NewSource(int64(deriveTrialSeed(masterSeed, globalIdx))))
		res, err := exec.Run(rng, globalIdx)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("overflow", "numeric overflow during trial execution", "error", err.Error())
			}
			cancel()
			return workerOutcome{state: state, completed: completed, err: err}
		}
		state.Ingest(res)
		completed++

		if cfg.ProgressEvery > 0 {
			newCount := atomic.AddInt64(progressCount, 1)
			if newCount%int64(cfg.ProgressEvery) == 0 {
				reportProgress(cfg, int(newCount))
			}
		}
	}
	return workerOutcome{state: state, completed: completed}
}

func reportProgress(cfg Config, completed int) {
	if cfg.Logger != nil {
		cfg.Logger.Info("progress", "simulation progress", "completed", completed, "total", cfg.Runs)
	}
	if cfg.Progress != nil {
		cfg.Progress(completed, cfg.Runs)
	}
}

// partitionTrials splits runs trials across workers using a ceiling
// partition: every worker but (typically) the last gets ceil(runs/workers)
// trials, and the remainder shrinks as workers are filled so the total is
// always exactly runs.
func partitionTrials(runs, workers int) []int {
	per := (runs + workers - 1) / workers
	counts := make([]int, workers)
	remaining := runs
	for i := 0; i < workers; i++ {
		c := per
		if c > remaining {
			c = remaining
		}
		counts[i] = c
		remaining -= c
	}
	return counts
}

// partitionOffsets converts per-worker trial counts into each worker's
// starting global trial index, so runWorker can recover the global index
// of every trial it executes.
func partitionOffsets(counts []int) []int {
	offsets := make([]int, len(counts))
	sum := 0
	for i, c := range counts {
		offsets[i] = sum
		sum += c
	}
	return offsets
}

func nondeterministicSeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed, clearly-marked seed rather than
		// panicking mid-run.
		return 0xDEADBEEFCAFEBABE
	}
	return binary.LittleEndian.Uint64(buf[:])
}
