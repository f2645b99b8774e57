package models

// Team represents a delivery team on the release train.
type Team struct {
	// ID is the unique identifier for this team.
	ID string `json:"id"`
	// Name is the team's display name.
	Name string `json:"name"`
	// MemberCount is the number of people on the team.
	MemberCount int `json:"member_count"`
	// AverageVelocity is the historical points per iteration.
	AverageVelocity float64 `json:"average_velocity"`
	// CapacityFactor scales velocity for planned absence (0-1].
	CapacityFactor float64 `json:"capacity_factor"`
	// Specializations are domain keywords the team is strong in.
	Specializations []string `json:"specializations,omitempty"`
}

// HasSpecialization returns true if the team lists the given keyword.
func (t Team) HasSpecialization(keyword string) bool {
	for _, s := range t.Specializations {
		if s == keyword {
			return true
		}
	}
	return false
}
