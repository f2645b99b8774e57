package depgraph

import (
	"sort"

	"github.com/traincrew/artplan/pkg/models"
)

// criticalPath computes the longest weighted path over the hard-edge
// subgraph of the retained (acyclic) edge set. Path weight is the sum
// of item points along it. Ties break by lexicographic ID at every
// choice point so repeated runs return the same path.
func criticalPath(nodes map[string]models.WorkItem, retained []models.DependencyEdge) []string {
	preds := make(map[string][]string, len(nodes))
	hasHard := false
	for _, e := range retained {
		if e.Strength != models.StrengthHard {
			continue
		}
		hasHard = true
		preds[e.TargetID] = append(preds[e.TargetID], e.SourceID)
	}
	if !hasHard {
		return nil
	}
	for id := range preds {
		sort.Strings(preds[id])
	}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// dist[v] is the heaviest path ending at v; best[v] the chosen
	// predecessor on that path.
	dist := make(map[string]int, len(nodes))
	best := make(map[string]string, len(nodes))
	state := make(map[string]int, len(nodes)) // 0 unvisited, 1 visiting, 2 done

	var visit func(id string) int
	visit = func(id string) int {
		switch state[id] {
		case 2:
			return dist[id]
		case 1:
			// Retained edges are acyclic; a revisit means a caller
			// bug, treat the node as terminal.
			return 0
		}
		state[id] = 1

		d := weight(nodes[id])
		for _, p := range preds[id] {
			cand := visit(p) + weight(nodes[id])
			if cand > d || (cand == d && betterPred(best[id], p)) {
				d = cand
				best[id] = p
			}
		}

		dist[id] = d
		state[id] = 2
		return d
	}

	end, endDist := "", 0
	for _, id := range ids {
		d := visit(id)
		if d > endDist || (d == endDist && (end == "" || id < end)) {
			end, endDist = id, d
		}
	}
	if end == "" {
		return nil
	}

	// Walk predecessors back to the path start, then reverse.
	var path []string
	for id := end; id != ""; id = best[id] {
		path = append(path, id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// betterPred reports whether candidate should replace current on an
// equal-weight tie. An unset current predecessor is kept (the node
// stays a path start); otherwise the smaller ID wins.
func betterPred(current, candidate string) bool {
	if current == "" {
		return false
	}
	return candidate < current
}

// weight returns the scheduling weight of an item, its points floored
// at zero.
func weight(item models.WorkItem) int {
	if item.Points < 0 {
		return 0
	}
	return item.Points
}
