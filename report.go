package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BuildLessonsReport renders the lessons-learned markdown for a finished
// change: final scores, what the CAB revised relative to the requester's
// submission, and how the execution window compared to plan.
func BuildLessonsReport(cr *ChangeRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Lessons Learned — #%d %s\n\n", cr.ID, cr.Title)
	fmt.Fprintf(&b, "- Status: %s\n", cr.Status)
	if cr.Priority != "" {
		fmt.Fprintf(&b, "- Priority: %s\n", cr.Priority)
	}
	fmt.Fprintf(&b, "- Requested by: %s\n", cr.Requester)
	fmt.Fprintf(&b, "- Submitted: %s\n\n", cr.CreatedAt.Format("2006-01-02"))

	b.WriteString("## Scores\n\n")
	b.WriteString("| Dimension | Score | Level | Calculated |\n|---|---|---|---|\n")
	writeScoreRow(&b, "Benefit", cr.Benefit)
	writeScoreRow(&b, "Effort", cr.Effort)
	writeScoreRow(&b, "Risk", cr.Risk)
	b.WriteString("\n")

	b.WriteString("## CAB revisions vs original submission\n\n")
	revisions := DiffWizardInputs(cr.OriginalInput, cr.WizardInput)
	if len(revisions) == 0 {
		b.WriteString("The CAB accepted the submission as-is.\n\n")
	} else {
		b.WriteString("| Field | Original | CAB-revised |\n|---|---|---|\n")
		for _, d := range revisions {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", d.Field, orDash(d.Original), orDash(d.Revised))
		}
		b.WriteString("\n")
	}

	if sched := cr.Scheduling; sched != nil {
		b.WriteString("## Execution\n\n")
		fmt.Fprintf(&b, "- Planned window: %s → %s\n",
			sched.ScheduledStart.Format("2006-01-02 15:04"), sched.ScheduledEnd.Format("2006-01-02 15:04"))
		if sched.ActualStart != nil {
			fmt.Fprintf(&b, "- Actual start: %s\n", sched.ActualStart.Format("2006-01-02 15:04"))
		}
		if sched.ActualEnd != nil {
			fmt.Fprintf(&b, "- Actual end: %s\n", sched.ActualEnd.Format("2006-01-02 15:04"))
		}
		if sched.ActualStart != nil && sched.ActualEnd != nil {
			planned := sched.ScheduledEnd.Sub(sched.ScheduledStart)
			actual := sched.ActualEnd.Sub(*sched.ActualStart)
			fmt.Fprintf(&b, "- Duration: planned %s, actual %s\n", planned.Round(time.Minute), actual.Round(time.Minute))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeScoreRow(b *strings.Builder, label string, snap *ScoreSnapshot) {
	if snap == nil {
		fmt.Fprintf(b, "| %s | — | — | never calculated |\n", label)
		return
	}
	level := snap.Level
	if level == "" {
		level = "—"
	}
	fmt.Fprintf(b, "| %s | %.1f | %s | %s |\n", label, snap.Score, level, snap.CalculatedAt.Format("2006-01-02 15:04"))
}

// FieldDiff is one requester-vs-CAB difference in the wizard document.
type FieldDiff struct {
	Field    string
	Original string
	Revised  string
}

// DiffWizardInputs lists the fields the CAB revised, in a stable order.
func DiffWizardInputs(original, revised WizardInput) []FieldDiff {
	var diffs []FieldDiff
	add := func(field, orig, rev string) {
		if orig != rev {
			diffs = append(diffs, FieldDiff{Field: field, Original: orig, Revised: rev})
		}
	}

	for _, f := range benefitFactors {
		origRaw, origTimeline, _, origOK := f.details(original)
		revRaw, revTimeline, _, revOK := f.details(revised)
		if !origOK && !revOK {
			continue
		}
		if !origOK {
			origRaw, origTimeline = "", ""
		}
		if !revOK {
			revRaw, revTimeline = "", ""
		}
		add(f.name+" value", origRaw, revRaw)
		add(f.name+" timeline", origTimeline, revTimeline)
	}

	add("estimatedEffortHours", floatStr(original.EstimatedEffortHours), floatStr(revised.EstimatedEffortHours))
	add("estimatedCost", floatStr(original.EstimatedCost), floatStr(revised.EstimatedCost))
	add("impactedUsers", intStr(original.ImpactedUsers), intStr(revised.ImpactedUsers))
	add("systemsAffected", strings.Join(original.SystemsAffected, ", "), strings.Join(revised.SystemsAffected, ", "))
	add("urgency", original.UrgencyLevel, revised.UrgencyLevel)
	add("complexity", intStr(original.Complexity), intStr(revised.Complexity))
	add("resourceRequirement", intStr(original.ResourceRequirement), intStr(revised.ResourceRequirement))
	add("testingCoverage", intStr(original.TestingCoverage), intStr(revised.TestingCoverage))
	add("rollbackCapability", intStr(original.RollbackCapability), intStr(revised.RollbackCapability))
	add("documentationRequired", intStr(original.DocumentationRequired), intStr(revised.DocumentationRequired))
	add("dependencies", intStr(original.Dependencies), intStr(revised.Dependencies))
	add("strategicAlignment", intStr(original.StrategicAlignment), intStr(revised.StrategicAlignment))

	return diffs
}

func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g", v)
}

func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// WriteLessonsReportFile writes the report next to the other generated
// reports and returns the path.
func WriteLessonsReportFile(content, outputDir string, cr *ChangeRequest) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("lessons_%d_%s.md", cr.ID, time.Now().Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}
