// Package report builds the externally defined Result object from a
// finalized aggregate snapshot: percentiles, buffers, task criticality,
// sensitivity, category rollups, scenarios, the duration distribution and
// run metadata. Beyond threshold classification and formatting, its own
// arithmetic is limited to buffer differences, category rollups pooled
// from the per-task moments, and cumulative probabilities.
package report

import (
	"math"
	"sort"

	"github.com/joshharrison/pertsim/internal/aggregate"
	"github.com/joshharrison/pertsim/internal/dagmodel"
)

var reportedPercentiles = []float64{10, 25, 50, 75, 80, 90, 95}

type Duration struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	N      int64   `json:"n"`
}

type Buffer struct {
	Days         float64 `json:"days"`
	BufferDays   float64 `json:"buffer_days"`
	BufferPct    float64 `json:"buffer_pct"`
	UseCaseLabel string  `json:"use_case_label"`
}

type TaskCriticality struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Category               string  `json:"category"`
	CriticalityPct         float64 `json:"criticality_pct"`
	PriorityLevel          string  `json:"priority_level"`
	ResourceAllocationHint string  `json:"resource_allocation_hint"`
}

type Sensitivity struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	ImpactScore float64 `json:"impact_score"`
	Correlation float64 `json:"correlation"`
	Variance    float64 `json:"variance"`
	RiskLevel   string  `json:"risk_level"`
}

type Category struct {
	Name              string  `json:"name"`
	TaskCount         int     `json:"task_count"`
	MeanDuration      float64 `json:"mean_duration"`
	StdDuration       float64 `json:"std_duration"`
	RiskContribution  float64 `json:"risk_contribution"`
	AvgCriticalityPct float64 `json:"avg_criticality_pct"`
}

type Scenario struct {
	Name               string  `json:"name"`
	Target             float64 `json:"target"`
	SuccessProbability float64 `json:"success_probability"`
	Buffer             float64 `json:"buffer"`
	RecommendedFor     string  `json:"recommended_for"`
}

type RiskAnalysis struct {
	ProbabilityOverMean   float64 `json:"probability_over_mean"`
	ProbabilityOver150Pct float64 `json:"probability_over_150_percent"`
	ProbabilityOver200Pct float64 `json:"probability_over_200_percent"`
	ValueAtRisk95         float64 `json:"value_at_risk_95"`
	ExpectedShortfall95   float64 `json:"expected_shortfall_95"`
}

type DistributionPoint struct {
	Duration              float64 `json:"duration"`
	CumulativeProbability float64 `json:"cumulative_probability"`
}

type Meta struct {
	NTrialsCompleted int    `json:"n_trials_completed"`
	SeedUsed         uint64 `json:"seed_used"`
	Partial          bool   `json:"partial"`
}

// Result is the full externally defined hierarchical result, per spec §6.
type Result struct {
	Duration             Duration            `json:"duration"`
	Percentiles          map[string]float64  `json:"percentiles"`
	Buffers              map[string]Buffer   `json:"buffers"`
	TaskCriticality      []TaskCriticality   `json:"task_criticality"`
	Sensitivity          []Sensitivity       `json:"sensitivity"`
	Categories           []Category          `json:"categories"`
	Scenarios            []Scenario          `json:"scenarios"`
	Risk                 RiskAnalysis        `json:"risk_analysis"`
	DurationDistribution []DistributionPoint `json:"duration_distribution"`
	Meta                 Meta                `json:"meta"`
}

// Build assembles the Result from a DAG and a finalized aggregate
// snapshot, plus the run metadata the orchestrator produced.
func Build(dag *dagmodel.DAG, snap aggregate.Snapshot, seedUsed uint64, trialsCompleted int, partial bool) *Result {
	r := &Result{
		Duration: Duration{
			Mean:   snap.Duration.Mean,
			StdDev: snap.Duration.StdDev,
			Min:    snap.Duration.Min,
			Max:    snap.Duration.Max,
			N:      snap.Duration.N,
		},
		Percentiles: buildPercentiles(snap.SortedSamples),
		Risk: RiskAnalysis{
			ProbabilityOverMean:   snap.Risk.ProbabilityOverMean,
			ProbabilityOver150Pct: snap.Risk.ProbabilityOver150Pct,
			ProbabilityOver200Pct: snap.Risk.ProbabilityOver200Pct,
			ValueAtRisk95:         snap.Risk.ValueAtRisk95,
			ExpectedShortfall95:   snap.Risk.ExpectedShortfall95,
		},
		Meta: Meta{
			NTrialsCompleted: trialsCompleted,
			SeedUsed:         seedUsed,
			Partial:          partial,
		},
	}
	r.Buffers = buildBuffers(r.Percentiles)
	r.TaskCriticality = buildTaskCriticality(dag, snap)
	r.Sensitivity = buildSensitivity(dag, snap)
	r.Categories = buildCategories(dag, snap)
	r.Scenarios = buildScenarios(r.Percentiles, r.Duration.Mean)
	r.DurationDistribution = buildDistribution(snap.SortedSamples)
	return r
}

func buildPercentiles(sorted []float64) map[string]float64 {
	out := make(map[string]float64, len(reportedPercentiles))
	for _, p := range reportedPercentiles {
		out[percentileKey(p)] = aggregate.Percentile(sorted, p)
	}
	return out
}

func percentileKey(p float64) string {
	switch p {
	case 10:
		return "P10"
	case 25:
		return "P25"
	case 50:
		return "P50"
	case 75:
		return "P75"
	case 80:
		return "P80"
	case 90:
		return "P90"
	case 95:
		return "P95"
	default:
		return "P?"
	}
}

type bufferSpec struct {
	key   string
	label string
}

var bufferSpecs = []bufferSpec{
	{"P10", "Optimistic scenario"},
	{"P25", "Aggressive planning"},
	{"P50", "Baseline estimate"},
	{"P75", "Internal planning"},
	{"P80", "Moderate buffer"},
	{"P90", "External commitments"},
	{"P95", "Conservative buffer"},
}

// buildBuffers computes each percentile's buffer relative to the P50
// baseline, per spec §4.4: buffer = max(0, S_P - S_50), pct = buffer/S_50*100.
func buildBuffers(percentiles map[string]float64) map[string]Buffer {
	baseline := percentiles["P50"]
	out := make(map[string]Buffer, len(bufferSpecs))
	for _, spec := range bufferSpecs {
		days := percentiles[spec.key]
		bufferDays := days - baseline
		if bufferDays < 0 {
			bufferDays = 0
		}
		var pct float64
		if baseline != 0 {
			pct = bufferDays / baseline * 100
		}
		out[spec.key] = Buffer{
			Days:         days,
			BufferDays:   bufferDays,
			BufferPct:    pct,
			UseCaseLabel: spec.label,
		}
	}
	return out
}

func buildTaskCriticality(dag *dagmodel.DAG, snap aggregate.Snapshot) []TaskCriticality {
	out := make([]TaskCriticality, dag.Len())
	for i, t := range dag.Tasks {
		pct := snap.TaskStats[i].CriticalityPct
		priority, hint := priorityAndHint(pct)
		out[i] = TaskCriticality{
			ID:                     t.ID,
			Name:                   t.Name,
			Category:               t.Category,
			CriticalityPct:         pct,
			PriorityLevel:          priority,
			ResourceAllocationHint: hint,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CriticalityPct > out[j].CriticalityPct
	})
	return out
}

func priorityAndHint(pct float64) (priority, hint string) {
	switch {
	case pct > 80:
		return "Critical", "Best resources"
	case pct > 50:
		return "High", "Monitor closely"
	case pct > 20:
		return "Medium", "Monitor closely"
	default:
		return "Low", "Standard"
	}
}

func buildSensitivity(dag *dagmodel.DAG, snap aggregate.Snapshot) []Sensitivity {
	out := make([]Sensitivity, dag.Len())
	for i, t := range dag.Tasks {
		ts := snap.TaskStats[i]
		out[i] = Sensitivity{
			ID:          t.ID,
			Name:        t.Name,
			Category:    t.Category,
			ImpactScore: ts.ImpactScore,
			Correlation: ts.Correlation,
			Variance:    ts.Variance,
			RiskLevel:   riskLevel(ts.ImpactScore),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ImpactScore > out[j].ImpactScore
	})
	return out
}

func riskLevel(impactScore float64) string {
	switch {
	case impactScore > 1.0:
		return "High"
	case impactScore >= 0.4:
		return "Medium"
	default:
		return "Low"
	}
}

// buildCategories pools realized task durations across all tasks and all
// trials within a category (not just an average of per-task means), per
// spec §4.4, using the raw Σd_i/Σd_i² moments each TaskStat carries.
func buildCategories(dag *dagmodel.DAG, snap aggregate.Snapshot) []Category {
	type accum struct {
		count            int
		sumDi, sumDi2    float64
		n                int64
		sumCriticality   float64
		riskContribution float64
	}
	order := []string{}
	byName := map[string]*accum{}

	for i, t := range dag.Tasks {
		a, ok := byName[t.Category]
		if !ok {
			a = &accum{}
			byName[t.Category] = a
			order = append(order, t.Category)
		}
		ts := snap.TaskStats[i]
		a.count++
		a.sumDi += ts.SumDuration
		a.sumDi2 += ts.SumDurationSq
		a.n += ts.N
		a.sumCriticality += ts.CriticalityPct
		a.riskContribution += ts.ImpactScore
	}

	out := make([]Category, 0, len(order))
	for _, name := range order {
		a := byName[name]
		var mean, variance float64
		if a.n > 0 {
			mean = a.sumDi / float64(a.n)
			variance = a.sumDi2/float64(a.n) - mean*mean
			if variance < 0 {
				variance = 0
			}
		}
		out = append(out, Category{
			Name:              name,
			TaskCount:         a.count,
			MeanDuration:      mean,
			StdDuration:       math.Sqrt(variance),
			RiskContribution:  a.riskContribution,
			AvgCriticalityPct: a.sumCriticality / float64(a.count),
		})
	}
	return out
}

// buildScenarios mirrors monte_carlo.py's _export_scenario_planning
// scenario table, including its verbatim Recommended_For labels.
func buildScenarios(percentiles map[string]float64, mean float64) []Scenario {
	specs := []struct {
		name, key, recommendedFor string
		successPct                float64
	}{
		{"Aggressive", "P50", "Internal stretch goals", 50},
		{"Moderate", "P75", "Team planning", 75},
		{"Conservative", "P90", "Client commitments", 90},
		{"Very_Conservative", "P95", "High-risk projects", 95},
	}
	out := make([]Scenario, len(specs))
	for i, s := range specs {
		target := percentiles[s.key]
		buffer := target - mean
		if s.name == "Aggressive" {
			// Aggressive targets the median with no added buffer, even when
			// mean > median makes target-mean negative for a right-skewed
			// network.
			buffer = 0
		}
		out[i] = Scenario{
			Name:               s.name,
			Target:             target,
			SuccessProbability: s.successPct,
			Buffer:             buffer,
			RecommendedFor:     s.recommendedFor,
		}
	}
	return out
}

func buildDistribution(sorted []float64) []DistributionPoint {
	n := len(sorted)
	out := make([]DistributionPoint, n)
	for i, d := range sorted {
		out[i] = DistributionPoint{
			Duration:              d,
			CumulativeProbability: float64(i+1) / float64(n),
		}
	}
	return out
}
