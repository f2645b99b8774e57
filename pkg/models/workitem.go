package models

// ItemType classifies a work item in the backlog hierarchy.
type ItemType string

const (
	// ItemTypeStory is an implementable slice of a feature.
	ItemTypeStory ItemType = "story"
	// ItemTypeFeature is a user-facing capability spanning stories.
	ItemTypeFeature ItemType = "feature"
	// ItemTypeEpic is a large initiative spanning features.
	ItemTypeEpic ItemType = "epic"
	// ItemTypeEnabler is architectural or infrastructure work.
	ItemTypeEnabler ItemType = "enabler"
)

// Valid returns true if the item type is a known value.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeStory, ItemTypeFeature, ItemTypeEpic, ItemTypeEnabler:
		return true
	default:
		return false
	}
}

// WorkItem represents a unit of work in the backlog snapshot.
type WorkItem struct {
	// ID is the unique identifier for this item.
	ID string `json:"id"`
	// Type classifies the item (story, feature, epic, enabler).
	Type ItemType `json:"type"`
	// Title is the short description of the item.
	Title string `json:"title"`
	// Description provides detailed information about the item.
	Description string `json:"description,omitempty"`
	// Points is the estimated size in story points.
	Points int `json:"points"`
	// Priority is the backlog-assigned priority (lower is more urgent).
	Priority int `json:"priority,omitempty"`
	// ParentID is the ID of the parent item, if any.
	ParentID string `json:"parent_id,omitempty"`
	// AcceptanceCriteria defines the criteria for item completion.
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	// Attributes carries estimation inputs (business value, time
	// criticality, risk/opportunity) keyed by name on a 1-5 scale.
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// Attribute returns the named estimation input, or def when absent.
func (w WorkItem) Attribute(name string, def float64) float64 {
	if w.Attributes == nil {
		return def
	}
	if v, ok := w.Attributes[name]; ok {
		return v
	}
	return def
}

// ScoredItem is a WorkItem annotated with WSJF scoring inputs and result.
type ScoredItem struct {
	WorkItem
	// BusinessValue is the relative business value (1-5).
	BusinessValue float64 `json:"business_value"`
	// TimeCriticality is the urgency of delivery (1-5).
	TimeCriticality float64 `json:"time_criticality"`
	// RiskOpportunity is risk reduction or opportunity enablement (1-5).
	RiskOpportunity float64 `json:"risk_opportunity"`
	// JobSize is the effective size used as the WSJF divisor (>= 1).
	JobSize float64 `json:"job_size"`
	// WSJFScore is (BusinessValue + TimeCriticality + RiskOpportunity) / JobSize.
	WSJFScore float64 `json:"wsjf_score"`
	// OnCriticalPath indicates the item sits on the graph's critical path.
	OnCriticalPath bool `json:"on_critical_path,omitempty"`
}
