package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/traincrew/artplan/internal/engine"
	"github.com/traincrew/artplan/pkg/models"
)

// PlanView renders an ART plan as styled terminal panels.
type PlanView struct {
	width  int
	height int

	headerStyle   lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	iterStyle     lipgloss.Style
	overStyle     lipgloss.Style
	warningStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	footerStyle   lipgloss.Style
	progressFull  lipgloss.Style
	progressEmpty lipgloss.Style
}

// NewPlanView creates a PlanView with default styles.
func NewPlanView() *PlanView {
	return &PlanView{
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")).
			MarginBottom(1),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(18),

		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		iterStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),

		overStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		warningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),

		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		progressFull: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		progressEmpty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// SetSize sets the render dimensions.
func (v *PlanView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// RenderHeader renders the title bar with the last update time.
func (v *PlanView) RenderHeader(updated time.Time) string {
	title := "artplan watch"
	if !updated.IsZero() {
		title += fmt.Sprintf("  (updated %s)", updated.Format("15:04:05"))
	}
	return v.headerStyle.Render(title)
}

// RenderError renders a planning failure.
func (v *PlanView) RenderError(err error) string {
	return v.errorStyle.Render("planning failed: " + err.Error())
}

// RenderFooter renders the key hints.
func (v *PlanView) RenderFooter() string {
	return v.footerStyle.Render("r replan • q quit")
}

// RenderPlan renders the full plan: readiness, iterations, warnings.
func (v *PlanView) RenderPlan(res *engine.PlanResult) string {
	var b strings.Builder

	plan := res.Plan

	b.WriteString(v.labelStyle.Render("PI") + v.valueStyle.Render(plan.PI.Name) + "\n")
	b.WriteString(v.labelStyle.Render("Readiness") + v.renderReadiness(plan.ARTReadiness) + "\n")
	b.WriteString(v.labelStyle.Render("Items") +
		v.valueStyle.Render(fmt.Sprintf("%d (%.0f points)", plan.Summary.TotalItems, plan.Summary.TotalPoints)) + "\n")
	if len(res.Graph.CriticalPath) > 0 {
		b.WriteString(v.labelStyle.Render("Critical path") +
			v.valueStyle.Render(strings.Join(res.Graph.CriticalPath, " → ")) + "\n")
	}
	b.WriteString("\n")

	for _, it := range plan.Iterations {
		b.WriteString(v.renderIteration(it))
	}

	if len(plan.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range plan.Warnings {
			line := fmt.Sprintf("⚠ [%s] %s", w.Kind, w.Message)
			b.WriteString(v.warningStyle.Render(line) + "\n")
		}
	}

	return b.String()
}

func (v *PlanView) renderIteration(it models.Iteration) string {
	var b strings.Builder

	dates := fmt.Sprintf("%s – %s", it.StartDate.Format("Jan 02"), it.EndDate.Format("Jan 02"))
	b.WriteString(v.iterStyle.Render(it.ID) + "  " + v.footerStyle.Render(dates) + "\n")

	for _, tc := range it.Capacity {
		marker := ""
		if tc.IsOverAllocated {
			marker = v.overStyle.Render(" OVER")
		}
		b.WriteString(fmt.Sprintf("  %-12s %5.1f / %5.1f%s\n",
			tc.TeamID, tc.AllocatedPoints, tc.AvailableCapacity, marker))
	}

	for _, item := range it.AllocatedWork {
		b.WriteString(fmt.Sprintf("    %-14s %-32s %s\n",
			item.WorkItem.ID, truncate(item.WorkItem.Title, 32), item.AssignedTeam))
	}

	b.WriteString("\n")
	return b.String()
}

func (v *PlanView) renderReadiness(r models.ARTReadiness) string {
	const barWidth = 20
	filled := int(r.ReadinessScore * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := v.progressFull.Render(strings.Repeat("█", filled)) +
		v.progressEmpty.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %.0f%%", bar, r.ReadinessScore*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
