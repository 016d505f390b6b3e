package main

import "time"

// Status is the lifecycle state of a change request.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusScheduled   Status = "scheduled"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

// validTransitions is the full state machine. Any non-terminal state may also
// move to cancelled, which is encoded explicitly per source state.
var validTransitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:    {StatusScheduled, StatusCancelled},
	StatusScheduled:   {StatusInProgress, StatusCancelled},
	StatusInProgress:  {StatusCompleted, StatusFailed, StatusCancelled},
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// ReviewEligible reports whether a CAB decision may be recorded in this state.
func (s Status) ReviewEligible() bool {
	return s == StatusSubmitted || s == StatusUnderReview
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, t := range validTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Urgency levels as selected in the wizard.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Priority levels derived from the three scores on approval.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ChangeReasons are the selection flags from the submission wizard. Each
// selected reason is expected to come with its detail block; a flag without
// details simply contributes nothing to the benefit score.
type ChangeReasons struct {
	RevenueImprovement bool `json:"revenueImprovement"`
	CostReduction      bool `json:"costReduction"`
	CustomerImpact     bool `json:"customerImpact"`
	ProcessImprovement bool `json:"processImprovement"`
	InternalQoL        bool `json:"internalQoL"`
	RiskReduction      bool `json:"riskReduction"`
}

// Detail blocks carry free-form wizard text. Values stay raw strings
// ("£100,000", "12") and are parsed defensively at scoring time.
type RevenueDetails struct {
	ExpectedRevenue    string `json:"expectedRevenue"`
	RevenueTimeline    string `json:"revenueTimeline"`
	RevenueDescription string `json:"revenueDescription"`
}

type CostReductionDetails struct {
	ExpectedSavings    string `json:"expectedSavings"`
	SavingsTimeline    string `json:"savingsTimeline"`
	SavingsDescription string `json:"savingsDescription"`
}

type CustomerImpactDetails struct {
	CustomersAffected string `json:"customersAffected"`
	ImpactTimeline    string `json:"impactTimeline"`
	ImpactDescription string `json:"impactDescription"`
}

type ProcessImprovementDetails struct {
	ExpectedEfficiency  string `json:"expectedEfficiency"`
	ImprovementTimeline string `json:"improvementTimeline"`
	ProcessDescription  string `json:"processDescription"`
}

type InternalQoLDetails struct {
	UsersAffected        string `json:"usersAffected"`
	QoLTimeline          string `json:"qolTimeline"`
	ExpectedImprovements string `json:"expectedImprovements"`
}

type RiskReductionDetails struct {
	ExpectedReduction  string `json:"expectedReduction"`
	MitigationTimeline string `json:"mitigationTimeline"`
	RiskDescription    string `json:"riskDescription"`
}

// WizardInput is the full submission document. Detail blocks are pointers so
// "block absent" is distinguishable from "block empty" — an absent block means
// the factor is skipped entirely, not scored as zero.
//
// The rating fields are on the canonical 1–10 scale; zero means "not rated"
// and the factor is skipped by the effort calculator.
type WizardInput struct {
	ChangeReasons             ChangeReasons              `json:"changeReasons"`
	RevenueDetails            *RevenueDetails            `json:"revenueDetails,omitempty"`
	CostReductionDetails      *CostReductionDetails      `json:"costReductionDetails,omitempty"`
	CustomerImpactDetails     *CustomerImpactDetails     `json:"customerImpactDetails,omitempty"`
	ProcessImprovementDetails *ProcessImprovementDetails `json:"processImprovementDetails,omitempty"`
	InternalQoLDetails        *InternalQoLDetails        `json:"internalQoLDetails,omitempty"`
	RiskReductionDetails      *RiskReductionDetails      `json:"riskReductionDetails,omitempty"`

	ImpactedUsers        int      `json:"impactedUsers,omitempty"`
	SystemsAffected      []string `json:"systemsAffected,omitempty"`
	SystemsAffectedCount int      `json:"systemsAffectedCount,omitempty"`
	EstimatedEffortHours float64  `json:"estimatedEffortHours,omitempty"`
	EstimatedCost        float64  `json:"estimatedCost,omitempty"`
	Departments          []string `json:"departments,omitempty"`
	UrgencyLevel         string   `json:"urgencyLevel,omitempty"`

	Complexity            int `json:"complexity,omitempty"`
	ResourceRequirement   int `json:"resourceRequirement,omitempty"`
	TestingCoverage       int `json:"testingCoverage,omitempty"`
	RollbackCapability    int `json:"rollbackCapability,omitempty"`
	DocumentationRequired int `json:"documentationRequired,omitempty"`
	Dependencies          int `json:"dependencies,omitempty"`
	StrategicAlignment    int `json:"strategicAlignment,omitempty"`
}

// SystemCount returns the effective number of affected systems, preferring
// the explicit list over the CAB-entered count.
func (w WizardInput) SystemCount() int {
	if len(w.SystemsAffected) > 0 {
		return len(w.SystemsAffected)
	}
	return w.SystemsAffectedCount
}

// SchedulingData holds the planned window and the actual execution times.
type SchedulingData struct {
	ScheduledStart time.Time  `json:"scheduledStart"`
	ScheduledEnd   time.Time  `json:"scheduledEnd"`
	ActualStart    *time.Time `json:"actualStart,omitempty"`
	ActualEnd      *time.Time `json:"actualEnd,omitempty"`
}

// ScoreSnapshot is a persisted score: the result of one calculator run plus
// the time it was computed. Snapshots are never mutated; a re-score replaces
// the whole snapshot.
type ScoreSnapshot struct {
	Score        float64                    `json:"score"`
	Level        string                     `json:"level,omitempty"`
	Factors      map[string]FactorBreakdown `json:"factors"`
	CalculatedAt time.Time                  `json:"calculatedAt"`
}

// ChangeRequest is the aggregate record.
type ChangeRequest struct {
	ID          int64
	Title       string
	Requester   string
	RequesterID string
	Status      Status
	Priority    string

	// WizardInput is what gets scored; after an approval it holds the
	// CAB-revised document. OriginalInput keeps the requester's submission
	// untouched for lessons-learned comparison.
	WizardInput   WizardInput
	OriginalInput WizardInput

	Scheduling *SchedulingData

	Risk    *ScoreSnapshot
	Effort  *ScoreSnapshot
	Benefit *ScoreSnapshot

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChangeUpdate is a partial update; nil fields are left untouched.
type ChangeUpdate struct {
	Status      *Status
	Priority    *string
	WizardInput *WizardInput
	Scheduling  *SchedulingData
	Benefit     *ScoreSnapshot
	Effort      *ScoreSnapshot
	Risk        *ScoreSnapshot
}

// CabDecision is everything a CAB review changes on a request. The store
// applies it in a single transaction so the vote and the status transition
// cannot diverge.
type CabDecision struct {
	ReviewerID string
	Vote       string
	Comments   string
	ReviewData string // assessment JSON, kept for audit

	NewStatus   Status
	Priority    string
	MergedInput *WizardInput // nil on reject
	Benefit     *ScoreSnapshot
	Effort      *ScoreSnapshot
	Risk        *ScoreSnapshot
}
