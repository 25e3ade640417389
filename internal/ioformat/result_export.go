package ioformat

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joshharrison/pertsim/internal/report"
)

var percentileOrder = []string{"P10", "P25", "P50", "P75", "P80", "P90", "P95"}

// WriteResultCSVs emits the six CSV files the original tool produced, in
// dir: project_duration_distribution.csv, percentiles_and_buffers.csv,
// task_criticality.csv, sensitivity_analysis.csv, category_analysis.csv,
// scenario_planning.csv.
func WriteResultCSVs(dir string, r *report.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	writers := []struct {
		name string
		fn   func(io.Writer, *report.Result) error
	}{
		{"project_duration_distribution.csv", writeDistributionCSV},
		{"percentiles_and_buffers.csv", writeBuffersCSV},
		{"task_criticality.csv", writeTaskCriticalityCSV},
		{"sensitivity_analysis.csv", writeSensitivityCSV},
		{"category_analysis.csv", writeCategoryCSV},
		{"scenario_planning.csv", writeScenarioCSV},
	}
	for _, w := range writers {
		if err := writeCSVFile(filepath.Join(dir, w.name), r, w.fn); err != nil {
			return fmt.Errorf("write %s: %w", w.name, err)
		}
	}
	return nil
}

func writeCSVFile(path string, r *report.Result, fn func(io.Writer, *report.Result) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f, r)
}

func writeDistributionCSV(w io.Writer, r *report.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Duration_Days", "Frequency", "Cumulative_Probability"}); err != nil {
		return err
	}
	for _, pt := range r.DurationDistribution {
		if err := cw.Write([]string{
			formatF1(pt.Duration),
			"1",
			formatF4(pt.CumulativeProbability),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeBuffersCSV(w io.Writer, r *report.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Percentile", "Days", "Buffer_Days", "Buffer_Percentage", "Use_Case"}); err != nil {
		return err
	}
	for _, key := range percentileOrder {
		b := r.Buffers[key]
		if err := cw.Write([]string{
			key,
			formatF1(b.Days),
			formatF1(b.BufferDays),
			formatF1(b.BufferPct) + "%",
			b.UseCaseLabel,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTaskCriticalityCSV(w io.Writer, r *report.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Task_ID", "Task_Name", "Category", "Criticality_Percentage", "Priority_Level", "Resource_Allocation"}); err != nil {
		return err
	}
	for _, tc := range r.TaskCriticality {
		if err := cw.Write([]string{
			tc.ID, tc.Name, tc.Category,
			formatF1(tc.CriticalityPct) + "%",
			tc.PriorityLevel,
			tc.ResourceAllocationHint,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSensitivityCSV(w io.Writer, r *report.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Task_ID", "Task_Name", "Category", "Impact_Score", "Correlation", "Variance", "Risk_Level"}); err != nil {
		return err
	}
	for _, s := range r.Sensitivity {
		if err := cw.Write([]string{
			s.ID, s.Name, s.Category,
			formatF4(s.ImpactScore),
			formatF4(s.Correlation),
			formatF4(s.Variance),
			s.RiskLevel,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCategoryCSV(w io.Writer, r *report.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Category", "Task_Count", "Mean_Duration", "Std_Duration", "Risk_Contribution", "Avg_Criticality_Percentage"}); err != nil {
		return err
	}
	for _, c := range r.Categories {
		if err := cw.Write([]string{
			c.Name,
			fmt.Sprintf("%d", c.TaskCount),
			formatF1(c.MeanDuration),
			formatF1(c.StdDuration),
			formatF4(c.RiskContribution),
			formatF1(c.AvgCriticalityPct) + "%",
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeScenarioCSV(w io.Writer, r *report.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Scenario", "Target_Days", "Success_Probability", "Buffer_Days", "Recommended_For"}); err != nil {
		return err
	}
	for _, s := range r.Scenarios {
		if err := cw.Write([]string{
			s.Name,
			formatF1(s.Target),
			formatF1(s.SuccessProbability) + "%",
			formatF1(s.Buffer),
			s.RecommendedFor,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatF1(v float64) string { return fmt.Sprintf("%.1f", v) }
func formatF4(v float64) string { return fmt.Sprintf("%.4f", v) }

// WriteResultJSON emits the full hierarchical Result as indented JSON.
func WriteResultJSON(path string, r *report.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
