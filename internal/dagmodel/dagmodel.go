// Package dagmodel builds and validates a directed acyclic graph of tasks
// from flat records, producing an index-based adjacency representation and
// a deterministic topological order.
package dagmodel

import (
	"container/heap"

	"github.com/joshharrison/pertsim/internal/task"
)

// DAG is an immutable, index-based adjacency-list representation of a
// validated task network. Tasks are stored in original insertion order;
// predecessor and successor relationships are stored as indices into
// Tasks, not as task ids, so no shared ownership of task nodes is needed.
type DAG struct {
	Tasks     []*task.Task
	index     map[string]int
	preds     [][]int // preds[i] = indices of i's predecessors
	succs     [][]int // succs[i] = indices of i's successors
	topoOrder []int   // task indices in topological order
}

// Build constructs a DAG from a sequence of task records. Predecessor ids
// are resolved against other records in the same sequence. Returns a
// construction error (see errors.go) if the records are empty, contain a
// duplicate id, reference an unknown predecessor, contain an invalid
// estimate, or form a cycle.
func Build(records []*task.Task) (*DAG, error) {
	if len(records) == 0 {
		return nil, &EmptyError{}
	}

	index := make(map[string]int, len(records))
	for i, r := range records {
		if _, dup := index[r.ID]; dup {
			return nil, &DuplicateIDError{ID: r.ID}
		}
		index[r.ID] = i
	}

	n := len(records)
	preds := make([][]int, n)
	succs := make([][]int, n)
	for i, r := range records {
		if reason := task.ValidateEstimate(r.Optimistic, r.MostLikely, r.Pessimistic); reason != "" {
			return nil, &InvalidEstimateError{Task: r.ID, Reason: reason}
		}
		for _, pid := range r.Predecessors {
			pidx, ok := index[pid]
			if !ok {
				return nil, &UnknownPredecessorError{Task: r.ID, Missing: pid}
			}
			preds[i] = append(preds[i], pidx)
			succs[pidx] = append(succs[pidx], i)
		}
	}

	order, err := kahnOrder(n, preds, succs, ids(records))
	if err != nil {
		return nil, err
	}

	return &DAG{
		Tasks:     records,
		index:     index,
		preds:     preds,
		succs:     succs,
		topoOrder: order,
	}, nil
}

// kahnOrder runs Kahn's algorithm, always removing the lowest-insertion-
// index task among those with zero unresolved predecessors, so the
// resulting order is deterministic regardless of map iteration order.
func kahnOrder(n int, preds, succs [][]int, taskIDs []string) ([]int, error) {
	inDegree := make([]int, n)
	for i := range preds {
		inDegree[i] = len(preds[i])
	}

	ready := &intHeap{}
	heap.Init(ready)
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]int, 0, n)
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, i)
		for _, s := range succs[i] {
			inDegree[s]--
			if inDegree[s] == 0 {
				heap.Push(ready, s)
			}
		}
	}

	if len(order) != n {
		return nil, &CyclicDependencyError{Involved: findCycle(n, succs, taskIDs)}
	}
	return order, nil
}

// ids extracts task ids in insertion order.
func ids(records []*task.Task) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// findCycle locates one cycle via DFS with three-coloring, scanning nodes
// in index order for determinism, and reports it as task ids.
func findCycle(n int, succs [][]int, taskIDs []string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}

	var cyclePath []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range succs[u] {
			if color[v] == gray {
				cyclePath = []int{v, u}
				cur := u
				for cur != v {
					cur = parent[cur]
					cyclePath = append(cyclePath, cur)
				}
				for i, j := 0, len(cyclePath)-1; i < j; i, j = i+1, j-1 {
					cyclePath[i], cyclePath[j] = cyclePath[j], cyclePath[i]
				}
				return true
			}
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
			}
		}
		color[u] = black
		return false
	}

	for i := 0; i < n; i++ {
		if color[i] == white {
			if dfs(i) {
				break
			}
		}
	}

	out := make([]string, len(cyclePath))
	for i, idx := range cyclePath {
		out[i] = taskIDs[idx]
	}
	return out
}

// intHeap is a min-heap of ints, used to pick the lowest-insertion-index
// ready task at each Kahn step.
type intHeap []int

func (h intHeap) Len() int            { return len(h) }
func (h intHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Index returns the insertion index of the task with the given id, or
// (-1, false) if id is not present.
func (d *DAG) Index(id string) (int, bool) {
	i, ok := d.index[id]
	if !ok {
		return -1, false
	}
	return i, true
}

// TopoOrder returns task indices in a deterministic topological order.
func (d *DAG) TopoOrder() []int { return d.topoOrder }

// Predecessors returns the predecessor indices of task index i.
func (d *DAG) Predecessors(i int) []int { return d.preds[i] }

// Successors returns the successor indices of task index i.
func (d *DAG) Successors(i int) []int { return d.succs[i] }

// Len returns the number of tasks in the DAG.
func (d *DAG) Len() int { return len(d.Tasks) }

// Roots returns indices of tasks with no predecessors, in insertion order.
func (d *DAG) Roots() []int {
	var roots []int
	for i := range d.Tasks {
		if len(d.preds[i]) == 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Leaves returns indices of tasks with no successors, in insertion order.
func (d *DAG) Leaves() []int {
	var leaves []int
	for i := range d.Tasks {
		if len(d.succs[i]) == 0 {
			leaves = append(leaves, i)
		}
	}
	return leaves
}
