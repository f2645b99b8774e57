package models

// EdgeType classifies the relationship a dependency edge expresses.
type EdgeType string

const (
	// EdgeRequires means the source must complete before the target starts.
	EdgeRequires EdgeType = "requires"
	// EdgeBlocks means the source prevents the target from progressing.
	EdgeBlocks EdgeType = "blocks"
	// EdgeRelatesTo is an informational association.
	EdgeRelatesTo EdgeType = "relates_to"
)

// Valid returns true if the edge type is a known value.
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeRequires, EdgeBlocks, EdgeRelatesTo:
		return true
	default:
		return false
	}
}

// EdgeStrength indicates whether an edge is a scheduling constraint.
type EdgeStrength string

const (
	// StrengthHard edges must be respected by the scheduler.
	StrengthHard EdgeStrength = "hard"
	// StrengthSoft edges are advisory only.
	StrengthSoft EdgeStrength = "soft"
)

// Valid returns true if the strength is a known value.
func (s EdgeStrength) Valid() bool {
	return s == StrengthHard || s == StrengthSoft
}

// DetectionMethod records how a dependency edge was discovered.
type DetectionMethod string

const (
	// DetectionManual edges were entered by a person.
	DetectionManual DetectionMethod = "manual"
	// DetectionKeyword edges came from text-mention heuristics.
	DetectionKeyword DetectionMethod = "keyword"
	// DetectionStructural edges derive from parent/child links.
	DetectionStructural DetectionMethod = "structural"
)

// Valid reports whether the detection method is a known value.
func (m DetectionMethod) Valid() bool {
	return m == DetectionManual || m == DetectionKeyword || m == DetectionStructural
}

// DependencyEdge is a directed dependency between two work items.
// The source must be scheduled no later than the target.
type DependencyEdge struct {
	// ID is the unique identifier for this edge.
	ID string `json:"id"`
	// SourceID is the item that must come first.
	SourceID string `json:"source_id"`
	// TargetID is the item that depends on the source.
	TargetID string `json:"target_id"`
	// Type classifies the relationship.
	Type EdgeType `json:"type"`
	// Strength marks the edge as a hard constraint or advisory.
	Strength EdgeStrength `json:"strength"`
	// Confidence is the detector's confidence in this edge (0-1).
	Confidence float64 `json:"confidence"`
	// DetectionMethod records how the edge was discovered.
	DetectionMethod DetectionMethod `json:"detection_method"`
	// Dropped marks an edge removed during cycle breaking. Dropped
	// edges stay in the graph for reporting but no longer constrain
	// scheduling or the critical path.
	Dropped bool `json:"dropped,omitempty"`
}

// GraphStatistics summarizes the shape of a dependency graph.
type GraphStatistics struct {
	// HardDependencies is the count of hard edges.
	HardDependencies int `json:"hard_dependencies"`
	// SoftDependencies is the count of soft edges.
	SoftDependencies int `json:"soft_dependencies"`
	// AverageDependencies is edges divided by nodes.
	AverageDependencies float64 `json:"average_dependencies"`
	// IndependentItems is the count of nodes with no edges.
	IndependentItems int `json:"independent_items"`
	// HighDependencyItems lists nodes whose combined degree exceeds
	// one standard deviation above the mean.
	HighDependencyItems []string `json:"high_dependency_items,omitempty"`
}

// DependencyGraph is the analyzed dependency structure of a backlog.
type DependencyGraph struct {
	// Nodes are the work items in the graph.
	Nodes []WorkItem `json:"nodes"`
	// Edges are all dependency edges, including structural ones.
	Edges []DependencyEdge `json:"edges"`
	// CriticalPath is the longest chain of hard dependencies,
	// ordered source to sink, weighted by points.
	CriticalPath []string `json:"critical_path,omitempty"`
	// CircularDependencies lists every strongly connected component
	// of size greater than one.
	CircularDependencies [][]string `json:"circular_dependencies,omitempty"`
	// Statistics summarizes graph shape.
	Statistics GraphStatistics `json:"statistics"`
}

// OnCriticalPath returns true if the item ID sits on the critical path.
func (g *DependencyGraph) OnCriticalPath(id string) bool {
	for _, n := range g.CriticalPath {
		if n == id {
			return true
		}
	}
	return false
}

// HardDependenciesOf returns the IDs the given item depends on via
// retained hard edges (its hard-edge sources, dropped edges excluded).
func (g *DependencyGraph) HardDependenciesOf(id string) []string {
	var deps []string
	for _, e := range g.Edges {
		if e.TargetID == id && e.Strength == StrengthHard && !e.Dropped {
			deps = append(deps, e.SourceID)
		}
	}
	return deps
}
