// Package trial runs a single Monte Carlo iteration over a DAG: sampling
// task durations, computing the forward longest-path pass, and
// reconstructing one critical path with deterministic tie-breaking.
package trial

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/joshharrison/pertsim/internal/dagmodel"
	"github.com/joshharrison/pertsim/internal/pert"
)

// NumericOverflowError reports a non-finite sampled duration or finish
// time produced during a trial. This indicates a programming or data bug
// and aborts the run; it is never produced by cancellation.
type NumericOverflowError struct {
	TrialIndex int
	TaskIndex  int
	TaskID     string
	Stage      string // "duration" or "finish"
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("trial %d: non-finite %s for task %q", e.TrialIndex, e.Stage, e.TaskID)
}

// Result is the outcome of one trial. Durations, Finishes and Critical
// alias the Executor's private scratch buffers: they are valid only until
// the next call to Executor.Run and must be consumed (copied or folded
// into running statistics) before then.
type Result struct {
	Durations     []float64
	Finishes      []float64
	Critical      []bool
	TotalDuration float64
	SinkIndex     int
}

// Executor runs repeated trials over a fixed DAG, reusing a private
// scratch buffer of size |Tasks| for durations, finish times and
// critical-path membership across calls, per the spec's ownership model.
type Executor struct {
	dag       *dagmodel.DAG
	dists     []pert.Distribution
	durations []float64
	finishes  []float64
	critical  []bool
}

// NewExecutor builds an Executor over dag, constructing one Beta-PERT
// sampler (lambda=4) per task from its three-point estimate.
func NewExecutor(dag *dagmodel.DAG) *Executor {
	n := dag.Len()
	dists := make([]pert.Distribution, n)
	for i, t := range dag.Tasks {
		dists[i] = pert.NewBetaPERT(t.Optimistic, t.MostLikely, t.Pessimistic)
	}
	return &Executor{
		dag:       dag,
		dists:     dists,
		durations: make([]float64, n),
		finishes:  make([]float64, n),
		critical:  make([]bool, n),
	}
}

// Run executes one trial using rng and returns the result. trialIndex is
// used only to annotate a NumericOverflowError, if one occurs.
func (e *Executor) Run(rng *rand.Rand, trialIndex int) (Result, error) {
	n := e.dag.Len()

	for i := 0; i < n; i++ {
		d := e.dists[i].Sample(rng)
		if !isFinite(d) {
			return Result{}, &NumericOverflowError{TrialIndex: trialIndex, TaskIndex: i, TaskID: e.dag.Tasks[i].ID, Stage: "duration"}
		}
		e.durations[i] = d
		e.critical[i] = false
	}

	for _, i := range e.dag.TopoOrder() {
		maxPredFinish := 0.0
		for _, p := range e.dag.Predecessors(i) {
			if e.finishes[p] > maxPredFinish {
				maxPredFinish = e.finishes[p]
			}
		}
		f := e.durations[i] + maxPredFinish
		if !isFinite(f) {
			return Result{}, &NumericOverflowError{TrialIndex: trialIndex, TaskIndex: i, TaskID: e.dag.Tasks[i].ID, Stage: "finish"}
		}
		e.finishes[i] = f
	}

	sink := 0
	total := e.finishes[0]
	for i := 1; i < n; i++ {
		if e.finishes[i] > total {
			sink = i
			total = e.finishes[i]
		}
	}

	cur := sink
	for {
		e.critical[cur] = true
		preds := e.dag.Predecessors(cur)
		if len(preds) == 0 {
			break
		}
		best := preds[0]
		for _, p := range preds[1:] {
			if e.finishes[p] > e.finishes[best] || (e.finishes[p] == e.finishes[best] && p < best) {
				best = p
			}
		}
		cur = best
	}

	return Result{
		Durations:     e.durations,
		Finishes:      e.finishes,
		Critical:      e.critical,
		TotalDuration: total,
		SinkIndex:     sink,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
