// Package decompose splits oversized work items into implementable
// children whose points sum to the parent's.
package decompose

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/traincrew/artplan/pkg/models"
)

// ErrCannotSplit indicates an item is too small to split further.
var ErrCannotSplit = errors.New("cannot split item below threshold")

// DefaultThreshold is the largest point size a story may carry into
// planning without being decomposed.
const DefaultThreshold = 5

// maxChildren bounds how many children a single split produces.
// Items too large for five threshold-sized children are split again
// by DecomposeAll on the next pass.
const maxChildren = 5

// Trace records a parent-to-children split for the traceability sink.
type Trace struct {
	// ParentID is the decomposed item.
	ParentID string `json:"parent_id"`
	// ChildIDs are the items created from the parent, in order.
	ChildIDs []string `json:"child_ids"`
}

// Engine performs deterministic point-based decomposition.
type Engine struct {
	threshold int
}

// New creates an Engine with the given point threshold.
// A negative threshold falls back to DefaultThreshold. Zero is
// accepted and marks every positive-point item oversized, so
// one-point items surface the cannot-split warning.
func New(threshold int) *Engine {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold}
}

// Threshold returns the configured point threshold.
func (e *Engine) Threshold() int {
	return e.threshold
}

// Decompose splits an item exceeding the threshold into 2-5 children.
// Items at or under the threshold are returned unchanged with no trace.
// Items that exceed the threshold but cannot be split (points <= 1)
// are returned as-is along with a cannot-split warning.
//
// Children satisfy: points sum to the parent's points and every share
// is positive. The last child absorbs the rounding remainder, except
// when five children cannot hold the total, where an even floor split
// is used and oversized children are re-split on the next pass.
// Acceptance criteria are partitioned evenly by count with the
// remainder going to the first child so no criterion is dropped.
func (e *Engine) Decompose(item models.WorkItem) ([]models.WorkItem, *Trace, []models.ValidationWarning) {
	if item.Points <= e.threshold {
		return []models.WorkItem{item}, nil, nil
	}

	if item.Points <= 1 {
		warn := models.ValidationWarning{
			Kind:    models.WarnCannotSplit,
			ItemID:  item.ID,
			Message: fmt.Sprintf("item %s exceeds threshold but has %d points: %v", item.ID, item.Points, ErrCannotSplit),
		}
		return []models.WorkItem{item}, nil, []models.ValidationWarning{warn}
	}

	n := maxChildren
	capped := true
	if e.threshold > 0 {
		n = (item.Points + e.threshold - 1) / e.threshold
		capped = false
	}
	if n < 2 {
		n = 2
	}
	if n > maxChildren {
		n = maxChildren
		capped = true
	}
	if n > item.Points {
		n = item.Points
	}

	children := make([]models.WorkItem, n)
	// Earlier children take the rounded-up share so the last child,
	// which absorbs the remainder, never exceeds the threshold. When
	// the cap binds that share can overshoot the total and drive the
	// last child negative, so an even floor split is used instead;
	// every share stays positive and DecomposeAll re-splits children
	// still over the threshold on its next pass.
	base := (item.Points + n - 1) / n
	rem := 0
	if capped {
		base = item.Points / n
		rem = item.Points % n
	}
	allocated := 0
	criteria := partitionCriteria(item.AcceptanceCriteria, n)

	for i := 0; i < n; i++ {
		points := base
		switch {
		case capped:
			if i < rem {
				points++
			}
		case i == n-1:
			points = item.Points - allocated
		}
		allocated += points

		children[i] = models.WorkItem{
			ID:                 childID(item.ID, i+1),
			Type:               childType(item.Type),
			Title:              fmt.Sprintf("%s (part %d of %d)", item.Title, i+1, n),
			Description:        item.Description,
			Points:             points,
			Priority:           item.Priority,
			ParentID:           item.ID,
			AcceptanceCriteria: criteria[i],
			Attributes:         item.Attributes,
		}
	}

	trace := &Trace{ParentID: item.ID}
	for _, c := range children {
		trace.ChildIDs = append(trace.ChildIDs, c.ID)
	}
	return children, trace, nil
}

// DecomposeAll decomposes every oversized item in a backlog, splitting
// repeatedly until all items comply with the threshold. Compliant items
// pass through untouched, so the operation is idempotent.
func (e *Engine) DecomposeAll(items []models.WorkItem) ([]models.WorkItem, []Trace, []models.ValidationWarning) {
	var (
		out      []models.WorkItem
		traces   []Trace
		warnings []models.ValidationWarning
	)

	pending := make([]models.WorkItem, len(items))
	copy(pending, items)

	// Each pass splits what it can; very large items need more than
	// one pass because a single split is capped at five children.
	for pass := 0; len(pending) > 0 && pass < 8; pass++ {
		var next []models.WorkItem
		split := false
		for _, item := range pending {
			children, trace, warns := e.Decompose(item)
			warnings = append(warnings, warns...)
			if trace == nil {
				out = append(out, children...)
				continue
			}
			split = true
			traces = append(traces, *trace)
			next = append(next, children...)
		}
		pending = next
		if !split {
			break
		}
	}
	// Anything still pending after the pass cap passes through as-is.
	out = append(out, pending...)

	return out, traces, warnings
}

// childID derives a deterministic child identifier from the parent.
func childID(parentID string, ordinal int) string {
	if parentID == "" {
		return uuid.New().String()
	}
	return fmt.Sprintf("%s-%d", parentID, ordinal)
}

// childType maps a parent type to the type its children carry.
// Splitting a feature or epic yields stories; stories and enablers
// split into smaller items of the same type.
func childType(t models.ItemType) models.ItemType {
	switch t {
	case models.ItemTypeFeature, models.ItemTypeEpic:
		return models.ItemTypeStory
	default:
		return t
	}
}

// partitionCriteria splits acceptance criteria evenly across n
// children by count, with the remainder going to the first child.
func partitionCriteria(criteria []string, n int) [][]string {
	parts := make([][]string, n)
	if len(criteria) == 0 {
		return parts
	}

	base := len(criteria) / n
	rem := len(criteria) % n
	idx := 0
	for i := 0; i < n; i++ {
		count := base
		if i == 0 {
			count += rem
		}
		if count == 0 {
			continue
		}
		parts[i] = append([]string(nil), criteria[idx:idx+count]...)
		idx += count
	}
	return parts
}
