package dagmodel

import (
	"testing"

	"github.com/joshharrison/pertsim/internal/task"
)

func mk(id, name string, preds []string, o, m, p float64) *task.Task {
	return &task.Task{ID: id, Name: name, Predecessors: preds, Optimistic: o, MostLikely: m, Pessimistic: p}
}

func TestBuild_LinearChain(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", nil, 1, 2, 3),
		mk("b", "B", []string{"a"}, 1, 2, 3),
		mk("c", "C", []string{"b"}, 1, 2, 3),
	}
	d, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := d.TopoOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 tasks in topo order, got %d", len(order))
	}
	ai, _ := d.Index("a")
	bi, _ := d.Index("b")
	ci, _ := d.Index("c")
	if order[0] != ai || order[1] != bi || order[2] != ci {
		t.Errorf("expected order [a b c], got indices %v", order)
	}
}

func TestBuild_DiamondDAG(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", nil, 1, 1, 1),
		mk("b", "B", []string{"a"}, 1, 1, 1),
		mk("c", "C", []string{"a"}, 1, 1, 1),
		mk("d", "D", []string{"b", "c"}, 1, 1, 1),
	}
	d, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	di, _ := d.Index("d")
	if d.Predecessors(di) == nil || len(d.Predecessors(di)) != 2 {
		t.Errorf("expected d to have 2 predecessors")
	}
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(nil)
	if _, ok := err.(*EmptyError); !ok {
		t.Fatalf("expected EmptyError, got %v", err)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", nil, 1, 1, 1),
		mk("a", "A2", nil, 1, 1, 1),
	}
	_, err := Build(records)
	dupErr, ok := err.(*DuplicateIDError)
	if !ok {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}
	if dupErr.ID != "a" {
		t.Errorf("expected duplicate id 'a', got %q", dupErr.ID)
	}
}

func TestBuild_UnknownPredecessor(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", nil, 1, 1, 1),
		mk("b", "B", []string{"x"}, 1, 1, 1),
	}
	_, err := Build(records)
	upErr, ok := err.(*UnknownPredecessorError)
	if !ok {
		t.Fatalf("expected UnknownPredecessorError, got %v", err)
	}
	if upErr.Task != "b" || upErr.Missing != "x" {
		t.Errorf("unexpected error fields: %+v", upErr)
	}
}

func TestBuild_CyclicDependency(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", []string{"b"}, 1, 1, 1),
		mk("b", "B", []string{"a"}, 1, 1, 1),
	}
	_, err := Build(records)
	cycErr, ok := err.(*CyclicDependencyError)
	if !ok {
		t.Fatalf("expected CyclicDependencyError, got %v", err)
	}
	involved := map[string]bool{}
	for _, id := range cycErr.Involved {
		involved[id] = true
	}
	if !involved["a"] || !involved["b"] {
		t.Errorf("expected both a and b in cycle, got %v", cycErr.Involved)
	}
}

func TestBuild_InvalidEstimate(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", nil, 5, 2, 1), // P < O
	}
	_, err := Build(records)
	estErr, ok := err.(*InvalidEstimateError)
	if !ok {
		t.Fatalf("expected InvalidEstimateError, got %v", err)
	}
	if estErr.Reason != "P<O" {
		t.Errorf("expected reason %q, got %q", "P<O", estErr.Reason)
	}
}

func TestBuild_DeterministicTieBreak(t *testing.T) {
	// Three independent roots; topo order must match insertion order
	// since all have zero in-degree simultaneously.
	records := []*task.Task{
		mk("z", "Z", nil, 1, 1, 1),
		mk("y", "Y", nil, 1, 1, 1),
		mk("x", "X", nil, 1, 1, 1),
	}
	d, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zi, _ := d.Index("z")
	yi, _ := d.Index("y")
	xi, _ := d.Index("x")
	order := d.TopoOrder()
	if order[0] != zi || order[1] != yi || order[2] != xi {
		t.Errorf("expected insertion-order tie-break [z y x], got %v", order)
	}
}

func TestRootsAndLeaves(t *testing.T) {
	records := []*task.Task{
		mk("a", "A", nil, 1, 1, 1),
		mk("b", "B", []string{"a"}, 1, 1, 1),
	}
	d, err := Build(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roots := d.Roots()
	leaves := d.Leaves()
	if len(roots) != 1 || len(leaves) != 1 {
		t.Fatalf("expected 1 root and 1 leaf, got %d roots %d leaves", len(roots), len(leaves))
	}
	ai, _ := d.Index("a")
	bi, _ := d.Index("b")
	if roots[0] != ai {
		t.Errorf("expected a to be root")
	}
	if leaves[0] != bi {
		t.Errorf("expected b to be leaf")
	}
}
