// Package ioformat handles the system's external tabular and hierarchical
// formats: the task-table CSV, the TOML configuration file, and Result
// export to CSV and JSON. It performs no simulation logic of its own.
package ioformat

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshharrison/pertsim/internal/dagmodel"
	"github.com/joshharrison/pertsim/internal/task"
)

var taskTableHeader = []string{
	"Task_ID", "Task_Name", "Category", "Predecessors",
	"Optimistic", "Most_Likely", "Pessimistic", "Resources",
}

// ReadTaskTable parses the task-table CSV format (§6): one row per task,
// columns Task_ID, Task_Name, Category, Predecessors, Optimistic,
// Most_Likely, Pessimistic, Resources. Predecessors is a comma-separated
// (possibly quoted) list of task ids. Malformed rows are reported as
// *dagmodel.MalformedRowError; the row number is 1-based and counts the
// header as row 1.
func ReadTaskTable(r io.Reader) ([]*task.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &dagmodel.EmptyError{}
	}
	if err != nil {
		return nil, &dagmodel.MalformedRowError{Row: 1, Reason: err.Error()}
	}
	if len(header) != len(taskTableHeader) {
		return nil, &dagmodel.MalformedRowError{Row: 1, Reason: fmt.Sprintf("expected %d columns, got %d", len(taskTableHeader), len(header))}
	}

	var tasks []*task.Task
	row := 1
	for {
		row++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &dagmodel.MalformedRowError{Row: row, Reason: err.Error()}
		}
		t, err := parseTaskRow(row, record)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return nil, &dagmodel.EmptyError{}
	}
	return tasks, nil
}

func parseTaskRow(row int, record []string) (*task.Task, error) {
	if len(record) != len(taskTableHeader) {
		return nil, &dagmodel.MalformedRowError{Row: row, Reason: fmt.Sprintf("expected %d columns, got %d", len(taskTableHeader), len(record))}
	}
	id := strings.TrimSpace(record[0])
	if id == "" {
		return nil, &dagmodel.MalformedRowError{Row: row, Reason: "empty Task_ID"}
	}

	o, err := parseFloatField(record[4])
	if err != nil {
		return nil, &dagmodel.MalformedRowError{Row: row, Reason: "Optimistic: " + err.Error()}
	}
	m, err := parseFloatField(record[5])
	if err != nil {
		return nil, &dagmodel.MalformedRowError{Row: row, Reason: "Most_Likely: " + err.Error()}
	}
	p, err := parseFloatField(record[6])
	if err != nil {
		return nil, &dagmodel.MalformedRowError{Row: row, Reason: "Pessimistic: " + err.Error()}
	}

	return &task.Task{
		ID:           id,
		Name:         record[1],
		Category:     record[2],
		Predecessors: parsePredecessors(record[3]),
		Optimistic:   o,
		MostLikely:   m,
		Pessimistic:  p,
		Resources:    record[7],
	}, nil
}

func parseFloatField(s string) (float64, error) {
	s = strings.TrimSpace(s)
	return strconv.ParseFloat(s, 64)
}

func parsePredecessors(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WriteTaskTable serializes tasks back into the task-table CSV format.
// Round-tripping a DAG through WriteTaskTable then ReadTaskTable must
// reproduce an identical set of records (§8).
func WriteTaskTable(w io.Writer, tasks []*task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taskTableHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		record := []string{
			t.ID,
			t.Name,
			t.Category,
			strings.Join(t.Predecessors, ","),
			strconv.FormatFloat(t.Optimistic, 'g', -1, 64),
			strconv.FormatFloat(t.MostLikely, 'g', -1, 64),
			strconv.FormatFloat(t.Pessimistic, 'g', -1, 64),
			t.Resources,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
