package depgraph

import (
	"sort"

	"github.com/traincrew/artplan/pkg/models"
)

// stronglyConnected runs Tarjan's algorithm over the directed graph
// formed by the given edges. Components are returned with their member
// IDs sorted, and the component list sorted by first member, so the
// output is identical for identical input regardless of map iteration
// order.
func stronglyConnected(ids []string, edges []models.DependencyEdge) [][]string {
	adj := make(map[string][]string, len(ids))
	for _, e := range edges {
		adj[e.SourceID] = append(adj[e.SourceID], e.TargetID)
	}
	for id := range adj {
		sort.Strings(adj[id])
	}

	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	t := &tarjanState{
		adj:     adj,
		index:   make(map[string]int, len(ids)),
		lowlink: make(map[string]int, len(ids)),
		onStack: make(map[string]bool, len(ids)),
	}

	for _, id := range ordered {
		if _, seen := t.index[id]; !seen {
			t.connect(id)
		}
	}

	for _, comp := range t.components {
		sort.Strings(comp)
	}
	sort.Slice(t.components, func(i, j int) bool {
		return t.components[i][0] < t.components[j][0]
	})
	return t.components
}

type tarjanState struct {
	adj        map[string][]string
	index      map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	next       int
	components [][]string
}

func (t *tarjanState) connect(v string) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adj[v] {
		if _, seen := t.index[w]; !seen {
			t.connect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}
