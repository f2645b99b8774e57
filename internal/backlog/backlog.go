// Package backlog loads program increment snapshots from YAML files
// and converts them into planning inputs. Schema problems are caught
// here at ingestion so the planning stages only ever see well-formed
// models.
package backlog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/traincrew/artplan/pkg/models"
)

// Snapshot is a fully validated planning input loaded from disk.
type Snapshot struct {
	// PI is the program increment under plan.
	PI models.ProgramIncrement
	// Items is the raw backlog before decomposition.
	Items []models.WorkItem
	// Edges are the explicit dependencies declared in the file.
	Edges []models.DependencyEdge
	// Scenarios are optional named what-if variants.
	Scenarios []ScenarioSpec
}

// ScenarioSpec describes a named what-if variant of the snapshot.
type ScenarioSpec struct {
	// Name labels the scenario.
	Name string
	// VelocityFactor scales every team's average velocity.
	VelocityFactor float64
	// CapacityOverrides replaces individual teams' capacity factors.
	CapacityOverrides map[string]float64
}

// File-level schema. Kept separate from the domain models so the YAML
// surface can stay loose while the models stay strict.
type backlogFile struct {
	PI        piSection      `yaml:"pi"`
	Items     []itemSection  `yaml:"items"`
	Edges     []edgeSection  `yaml:"dependencies"`
	Scenarios []scenarioSect `yaml:"scenarios"`
}

type piSection struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

type itemSection struct {
	ID          string             `yaml:"id"`
	Type        string             `yaml:"type"`
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Points      int                `yaml:"points"`
	Priority    int                `yaml:"priority"`
	ParentID    string             `yaml:"parent_id"`
	Criteria    []string           `yaml:"acceptance_criteria"`
	Attributes  map[string]float64 `yaml:"attributes"`
}

type edgeSection struct {
	ID         string  `yaml:"id"`
	Source     string  `yaml:"source"`
	Target     string  `yaml:"target"`
	Type       string  `yaml:"type"`
	Strength   string  `yaml:"strength"`
	Confidence float64 `yaml:"confidence"`
	Method     string  `yaml:"detection_method"`
}

type scenarioSect struct {
	Name              string             `yaml:"name"`
	VelocityFactor    float64            `yaml:"velocity_factor"`
	CapacityOverrides map[string]float64 `yaml:"capacity_overrides"`
}

type teamsFile struct {
	Teams []teamSection `yaml:"teams"`
}

type teamSection struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	MemberCount     int      `yaml:"member_count"`
	AverageVelocity float64  `yaml:"average_velocity"`
	CapacityFactor  float64  `yaml:"capacity_factor"`
	Specializations []string `yaml:"specializations"`
}

const dateLayout = "2006-01-02"

// Load reads a backlog snapshot file and validates it into planning
// models. Schema or semantic problems return an error wrapping
// models.ErrInputContract.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backlog file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw backlog YAML into a Snapshot.
func Parse(data []byte) (*Snapshot, error) {
	var file backlogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse backlog yaml: %v", models.ErrInputContract, err)
	}

	pi, err := parsePI(file.PI)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{PI: pi}
	seen := make(map[string]bool, len(file.Items))
	for i, sect := range file.Items {
		item, err := parseItem(i, sect)
		if err != nil {
			return nil, err
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %q", models.ErrInputContract, item.ID)
		}
		seen[item.ID] = true
		snap.Items = append(snap.Items, item)
	}

	for i, sect := range file.Edges {
		edge, err := parseEdge(i, sect)
		if err != nil {
			return nil, err
		}
		snap.Edges = append(snap.Edges, edge)
	}

	for _, sc := range file.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("%w: scenario without a name", models.ErrInputContract)
		}
		if sc.VelocityFactor == 0 {
			sc.VelocityFactor = 1.0
		}
		if sc.VelocityFactor < 0 {
			return nil, fmt.Errorf("%w: scenario %q has negative velocity factor", models.ErrInputContract, sc.Name)
		}
		snap.Scenarios = append(snap.Scenarios, ScenarioSpec{
			Name:              sc.Name,
			VelocityFactor:    sc.VelocityFactor,
			CapacityOverrides: sc.CapacityOverrides,
		})
	}

	return snap, nil
}

// LoadTeams reads a team roster file.
func LoadTeams(path string) ([]models.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teams file: %w", err)
	}
	return ParseTeams(data)
}

// ParseTeams validates raw team roster YAML.
func ParseTeams(data []byte) ([]models.Team, error) {
	var file teamsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse teams yaml: %v", models.ErrInputContract, err)
	}
	if len(file.Teams) == 0 {
		return nil, fmt.Errorf("%w: teams file declares no teams", models.ErrInputContract)
	}

	teams := make([]models.Team, 0, len(file.Teams))
	seen := make(map[string]bool, len(file.Teams))
	for i, sect := range file.Teams {
		if sect.ID == "" {
			return nil, fmt.Errorf("%w: team %d has no id", models.ErrInputContract, i)
		}
		if seen[sect.ID] {
			return nil, fmt.Errorf("%w: duplicate team id %q", models.ErrInputContract, sect.ID)
		}
		seen[sect.ID] = true
		if sect.CapacityFactor == 0 {
			sect.CapacityFactor = 1.0
		}
		teams = append(teams, models.Team{
			ID:              sect.ID,
			Name:            sect.Name,
			MemberCount:     sect.MemberCount,
			AverageVelocity: sect.AverageVelocity,
			CapacityFactor:  sect.CapacityFactor,
			Specializations: sect.Specializations,
		})
	}
	return teams, nil
}

// ApplyScenario returns a copy of the teams with the scenario's
// velocity factor and capacity overrides applied. The input slice is
// not modified.
func ApplyScenario(teams []models.Team, sc ScenarioSpec) []models.Team {
	out := make([]models.Team, len(teams))
	copy(out, teams)
	for i := range out {
		if sc.VelocityFactor > 0 {
			out[i].AverageVelocity *= sc.VelocityFactor
		}
		if cf, ok := sc.CapacityOverrides[out[i].ID]; ok {
			out[i].CapacityFactor = cf
		}
	}
	return out
}

func parsePI(sect piSection) (models.ProgramIncrement, error) {
	var pi models.ProgramIncrement
	if sect.ID == "" {
		return pi, fmt.Errorf("%w: pi.id is required", models.ErrInputContract)
	}
	start, err := time.Parse(dateLayout, sect.StartDate)
	if err != nil {
		return pi, fmt.Errorf("%w: pi.start_date %q: want YYYY-MM-DD", models.ErrInputContract, sect.StartDate)
	}
	end, err := time.Parse(dateLayout, sect.EndDate)
	if err != nil {
		return pi, fmt.Errorf("%w: pi.end_date %q: want YYYY-MM-DD", models.ErrInputContract, sect.EndDate)
	}
	pi.ID = sect.ID
	pi.Name = sect.Name
	pi.StartDate = start
	pi.EndDate = end
	return pi, nil
}

func parseItem(idx int, sect itemSection) (models.WorkItem, error) {
	var item models.WorkItem
	if sect.ID == "" {
		return item, fmt.Errorf("%w: item %d has no id", models.ErrInputContract, idx)
	}
	t := models.ItemType(sect.Type)
	if !t.Valid() {
		return item, fmt.Errorf("%w: item %q has unknown type %q", models.ErrInputContract, sect.ID, sect.Type)
	}
	if sect.Points < 0 {
		return item, fmt.Errorf("%w: item %q has negative points", models.ErrInputContract, sect.ID)
	}
	item.ID = sect.ID
	item.Type = t
	item.Title = sect.Title
	item.Description = sect.Description
	item.Points = sect.Points
	item.Priority = sect.Priority
	item.ParentID = sect.ParentID
	item.AcceptanceCriteria = sect.Criteria
	item.Attributes = sect.Attributes
	return item, nil
}

func parseEdge(idx int, sect edgeSection) (models.DependencyEdge, error) {
	var edge models.DependencyEdge
	if sect.Source == "" || sect.Target == "" {
		return edge, fmt.Errorf("%w: dependency %d is missing source or target", models.ErrInputContract, idx)
	}

	et := models.EdgeType(sect.Type)
	if sect.Type == "" {
		et = models.EdgeRequires
	}
	if !et.Valid() {
		return edge, fmt.Errorf("%w: dependency %d has unknown type %q", models.ErrInputContract, idx, sect.Type)
	}

	strength := models.EdgeStrength(sect.Strength)
	if sect.Strength == "" {
		strength = models.StrengthHard
	}
	if !strength.Valid() {
		return edge, fmt.Errorf("%w: dependency %d has unknown strength %q", models.ErrInputContract, idx, sect.Strength)
	}

	method := models.DetectionMethod(sect.Method)
	if sect.Method == "" {
		method = models.DetectionManual
	}
	if !method.Valid() {
		return edge, fmt.Errorf("%w: dependency %d has unknown detection method %q", models.ErrInputContract, idx, sect.Method)
	}

	conf := sect.Confidence
	if conf == 0 {
		conf = 1.0
	}
	if conf < 0 || conf > 1 {
		return edge, fmt.Errorf("%w: dependency %d confidence %v outside [0,1]", models.ErrInputContract, idx, sect.Confidence)
	}

	id := sect.ID
	if id == "" {
		id = fmt.Sprintf("dep-%s-%s", sect.Source, sect.Target)
	}

	edge.ID = id
	edge.SourceID = sect.Source
	edge.TargetID = sect.Target
	edge.Type = et
	edge.Strength = strength
	edge.Confidence = conf
	edge.DetectionMethod = method
	return edge, nil
}
