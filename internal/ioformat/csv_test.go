package ioformat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joshharrison/pertsim/internal/dagmodel"
	"github.com/joshharrison/pertsim/internal/task"
)

func TestReadTaskTable_Basic(t *testing.T) {
	csvData := `Task_ID,Task_Name,Category,Predecessors,Optimistic,Most_Likely,Pessimistic,Resources
a,Design,design,,1,2,3,alice
b,Build,build,a,2,4,9,bob
c,Test,qa,"a,b",1,2,3,carol
`
	tasks, err := ReadTaskTable(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[2].ID != "c" || len(tasks[2].Predecessors) != 2 {
		t.Errorf("expected c to have 2 predecessors, got %+v", tasks[2])
	}
	if tasks[0].Resources != "alice" {
		t.Errorf("expected resources 'alice', got %q", tasks[0].Resources)
	}
}

func TestReadTaskTable_Empty(t *testing.T) {
	_, err := ReadTaskTable(strings.NewReader("Task_ID,Task_Name,Category,Predecessors,Optimistic,Most_Likely,Pessimistic,Resources\n"))
	if _, ok := err.(*dagmodel.EmptyError); !ok {
		t.Fatalf("expected EmptyError, got %v", err)
	}
}

func TestReadTaskTable_MalformedColumnCount(t *testing.T) {
	csvData := "Task_ID,Task_Name,Category,Predecessors,Optimistic,Most_Likely,Pessimistic,Resources\na,A,cat,,1,2\n"
	_, err := ReadTaskTable(strings.NewReader(csvData))
	if _, ok := err.(*dagmodel.MalformedRowError); !ok {
		t.Fatalf("expected MalformedRowError, got %v", err)
	}
}

func TestReadTaskTable_MalformedNumericField(t *testing.T) {
	csvData := "Task_ID,Task_Name,Category,Predecessors,Optimistic,Most_Likely,Pessimistic,Resources\na,A,cat,,oops,2,3,\n"
	_, err := ReadTaskTable(strings.NewReader(csvData))
	mre, ok := err.(*dagmodel.MalformedRowError)
	if !ok {
		t.Fatalf("expected MalformedRowError, got %v", err)
	}
	if mre.Row != 2 {
		t.Errorf("expected row 2, got %d", mre.Row)
	}
}

func TestRoundTrip_TaskTable(t *testing.T) {
	original := []*task.Task{
		{ID: "a", Name: "Design", Category: "design", Predecessors: nil, Optimistic: 1, MostLikely: 2, Pessimistic: 3, Resources: "alice"},
		{ID: "b", Name: "Build", Category: "build", Predecessors: []string{"a"}, Optimistic: 2, MostLikely: 4, Pessimistic: 9, Resources: "bob"},
		{ID: "c", Name: "Test", Category: "qa", Predecessors: []string{"a", "b"}, Optimistic: 1, MostLikely: 2, Pessimistic: 3, Resources: ""},
	}

	dagBefore, err := dagmodel.Build(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteTaskTable(&buf, original); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reread, err := ReadTaskTable(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dagAfter, err := dagmodel.Build(reread)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dagBefore.Len() != dagAfter.Len() {
		t.Fatalf("task count changed across round-trip: %d vs %d", dagBefore.Len(), dagAfter.Len())
	}
	for i := range original {
		tb, ta := dagBefore.Tasks[i], dagAfter.Tasks[i]
		if tb.ID != ta.ID || tb.Name != ta.Name || tb.Category != ta.Category || tb.Resources != ta.Resources {
			t.Errorf("task %d fields changed: %+v vs %+v", i, tb, ta)
		}
		if tb.Optimistic != ta.Optimistic || tb.MostLikely != ta.MostLikely || tb.Pessimistic != ta.Pessimistic {
			t.Errorf("task %d estimate changed: %+v vs %+v", i, tb, ta)
		}
		if len(tb.Predecessors) != len(ta.Predecessors) {
			t.Errorf("task %d predecessor count changed: %v vs %v", i, tb.Predecessors, ta.Predecessors)
		}
	}
	for i := range dagBefore.TopoOrder() {
		if dagBefore.TopoOrder()[i] != dagAfter.TopoOrder()[i] {
			t.Fatalf("topo order changed at %d: %v vs %v", i, dagBefore.TopoOrder(), dagAfter.TopoOrder())
		}
	}
}
