package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/traincrew/artplan/internal/decompose"
	"github.com/traincrew/artplan/pkg/models"
)

// PlanRun is one stored planning outcome.
type PlanRun struct {
	ID             string    `json:"id"`
	PIID           string    `json:"pi_id"`
	PIName         string    `json:"pi_name"`
	Scenario       string    `json:"scenario"`
	ReadinessScore float64   `json:"readiness_score"`
	TotalItems     int       `json:"total_items"`
	TotalPoints    float64   `json:"total_points"`
	CreatedAt      time.Time `json:"created_at"`
}

// TraceRecord is one stored parent-to-child decomposition link.
type TraceRecord struct {
	ParentID string `json:"parent_id"`
	ChildID  string `json:"child_id"`
}

// SaveRun stores a plan run, its decomposition traces, and its
// warnings in one transaction. The full plan is kept as JSON so a
// stored run can be re-printed or exported without replanning.
func (db *DB) SaveRun(id, scenario string, plan *models.ARTPlan, traces []decompose.Trace, createdAt time.Time) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO plan_runs (id, pi_id, pi_name, scenario, readiness_score, total_items, total_points, created_at, plan_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, plan.PI.ID, plan.PI.Name, scenario, plan.ARTReadiness.ReadinessScore,
			plan.Summary.TotalItems, plan.Summary.TotalPoints, formatTime(createdAt), string(planJSON))
		if err != nil {
			return fmt.Errorf("insert plan run: %w", err)
		}

		for _, tr := range traces {
			for _, child := range tr.ChildIDs {
				if _, err := tx.Exec(`
					INSERT INTO traceability (run_id, parent_id, child_id) VALUES (?, ?, ?)
				`, id, tr.ParentID, child); err != nil {
					return fmt.Errorf("insert trace %s -> %s: %w", tr.ParentID, child, err)
				}
			}
		}

		for seq, w := range plan.Warnings {
			if _, err := tx.Exec(`
				INSERT INTO warnings (run_id, seq, kind, item_id, message) VALUES (?, ?, ?, ?, ?)
			`, id, seq, string(w.Kind), w.ItemID, w.Message); err != nil {
				return fmt.Errorf("insert warning %d: %w", seq, err)
			}
		}

		return nil
	})
}

// GetRun retrieves a stored run's metadata by ID.
// Returns nil if no run exists with that ID.
func (db *DB) GetRun(id string) (*PlanRun, error) {
	row := db.QueryRow(`
		SELECT id, pi_id, pi_name, scenario, readiness_score, total_items, total_points, created_at
		FROM plan_runs WHERE id = ?
	`, id)

	var r PlanRun
	var createdAt string
	err := row.Scan(&r.ID, &r.PIID, &r.PIName, &r.Scenario, &r.ReadinessScore, &r.TotalItems, &r.TotalPoints, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	r.CreatedAt, _ = parseTime(createdAt)
	return &r, nil
}

// GetPlan retrieves the full stored plan for a run.
// Returns nil if no run exists with that ID.
func (db *DB) GetPlan(id string) (*models.ARTPlan, error) {
	row := db.QueryRow(`SELECT plan_json FROM plan_runs WHERE id = ?`, id)

	var planJSON string
	err := row.Scan(&planJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	var plan models.ARTPlan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return &plan, nil
}

// ListRuns lists stored runs newest first, up to limit.
// A limit of zero or less lists all runs.
func (db *DB) ListRuns(limit int) ([]*PlanRun, error) {
	query := `
		SELECT id, pi_id, pi_name, scenario, readiness_score, total_items, total_points, created_at
		FROM plan_runs ORDER BY created_at DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*PlanRun
	for rows.Next() {
		var r PlanRun
		var createdAt string
		if err := rows.Scan(&r.ID, &r.PIID, &r.PIName, &r.Scenario, &r.ReadinessScore, &r.TotalItems, &r.TotalPoints, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = parseTime(createdAt)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// GetTraces retrieves a run's decomposition links, parent then child
// order.
func (db *DB) GetTraces(runID string) ([]TraceRecord, error) {
	rows, err := db.Query(`
		SELECT parent_id, child_id FROM traceability
		WHERE run_id = ? ORDER BY parent_id, child_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get traces: %w", err)
	}
	defer rows.Close()

	var traces []TraceRecord
	for rows.Next() {
		var tr TraceRecord
		if err := rows.Scan(&tr.ParentID, &tr.ChildID); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		traces = append(traces, tr)
	}
	return traces, rows.Err()
}

// GetWarnings retrieves a run's stored warnings in emission order.
func (db *DB) GetWarnings(runID string) ([]models.ValidationWarning, error) {
	rows, err := db.Query(`
		SELECT kind, item_id, message FROM warnings
		WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get warnings: %w", err)
	}
	defer rows.Close()

	var warnings []models.ValidationWarning
	for rows.Next() {
		var w models.ValidationWarning
		var kind string
		if err := rows.Scan(&kind, &w.ItemID, &w.Message); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		w.Kind = models.WarningKind(kind)
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

// DeleteRun removes a stored run and its dependent records.
func (db *DB) DeleteRun(id string) error {
	if _, err := db.Exec(`DELETE FROM plan_runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
