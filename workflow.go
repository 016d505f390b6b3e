package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Workflow error kinds. Calculators never return these — malformed wizard
// data is parsed defensively — only the orchestration layer does, and they
// propagate unchanged to the boundary for translation into user replies.
var (
	ErrNotFound      = errors.New("change request not found")
	ErrValidation    = errors.New("invalid request")
	ErrInvalidState  = errors.New("invalid state for operation")
	ErrConfiguration = errors.New("scoring configuration unavailable")
)

// ChangeStore is the persistence collaborator. ApplyCabDecision must be
// atomic: the vote, the merged input, the scores and the status transition
// land together or not at all.
type ChangeStore interface {
	FindChangeByID(id int64) (*ChangeRequest, error)
	InsertChangeRequest(cr *ChangeRequest) (int64, error)
	SaveChangeRequest(id int64, upd ChangeUpdate) (*ChangeRequest, error)
	AppendReviewVote(changeID int64, reviewerID, vote, comments, reviewData string) error
	AppendComment(changeID int64, userID, text string, internal bool) error
	ApplyCabDecision(changeID int64, d CabDecision) (*ChangeRequest, error)
}

// ScoringConfigSource supplies the currently-active scoring configuration.
// The engine only reads it at calculation time; config CRUD lives elsewhere.
type ScoringConfigSource interface {
	ActiveBenefitConfigs() (map[string]BenefitConfig, error)
	ActiveEffortConfigs() (map[string]EffortConfig, error)
}

// SubmitChange creates a new request in the submitted state, snapshotting
// the wizard input so later CAB revisions can be compared against it.
func SubmitChange(store ChangeStore, title, requester, requesterID string, input WizardInput) (*ChangeRequest, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	cr := &ChangeRequest{
		Title:         title,
		Requester:     requester,
		RequesterID:   requesterID,
		Status:        StatusSubmitted,
		WizardInput:   input,
		OriginalInput: input,
	}
	id, err := store.InsertChangeRequest(cr)
	if err != nil {
		return nil, err
	}
	return store.FindChangeByID(id)
}

// DecideCabReview records a CAB decision on a request.
//
// On approve the reviewer's assessment is merged over the submission, all
// three calculators run on the merged document, and the merged input, fresh
// score snapshots, derived priority and the approved status are persisted
// together with the vote. On reject merging and scoring are skipped entirely
// — scores only matter for work that will proceed — and any previously
// computed scores are left as they are.
//
// Duplicate votes from the same reviewer overwrite the prior vote.
func DecideCabReview(store ChangeStore, configs ScoringConfigSource, changeID int64, decision string, assessment *CabAssessment, comments, reviewerID string) (*ChangeRequest, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != "approve" && decision != "reject" {
		return nil, fmt.Errorf("%w: decision must be approve or reject, got %q", ErrValidation, decision)
	}
	if strings.TrimSpace(reviewerID) == "" {
		return nil, fmt.Errorf("%w: reviewer id is required", ErrValidation)
	}

	cr, err := store.FindChangeByID(changeID)
	if err != nil {
		return nil, err
	}
	if !cr.Status.ReviewEligible() {
		return nil, fmt.Errorf("%w: change %d is %s", ErrInvalidState, changeID, cr.Status)
	}

	reviewData := ""
	if assessment != nil {
		if b, err := json.Marshal(assessment); err == nil {
			reviewData = string(b)
		}
	}

	d := CabDecision{
		ReviewerID: reviewerID,
		Vote:       decision,
		Comments:   strings.TrimSpace(comments),
		ReviewData: reviewData,
	}

	if decision == "reject" {
		d.NewStatus = StatusRejected
		return store.ApplyCabDecision(changeID, d)
	}

	benefitConfigs, err := configs.ActiveBenefitConfigs()
	if err != nil {
		return nil, fmt.Errorf("%w: benefit configs: %v", ErrConfiguration, err)
	}
	effortConfigs, err := configs.ActiveEffortConfigs()
	if err != nil {
		return nil, fmt.Errorf("%w: effort configs: %v", ErrConfiguration, err)
	}

	merged := MergeAssessment(cr.WizardInput, assessment)
	now := time.Now().UTC()

	benefit := CalculateBenefit(merged, nil, benefitConfigs)
	effort := CalculateEffort(merged, nil, effortConfigs)
	risk := CalculateRisk(merged)

	d.NewStatus = StatusApproved
	d.MergedInput = &merged
	d.Priority = PriorityFor(benefit.Score, effort.Score, risk.Score)
	d.Benefit = &ScoreSnapshot{Score: benefit.Score, Factors: benefit.Factors, CalculatedAt: now}
	d.Effort = &ScoreSnapshot{Score: effort.Score, Factors: effort.Factors, CalculatedAt: now}
	d.Risk = &ScoreSnapshot{Score: risk.Score, Level: risk.Level, Factors: risk.Factors, CalculatedAt: now}

	return store.ApplyCabDecision(changeID, d)
}

// PriorityFor derives the scheduling priority from the three scores. High
// benefit and low effort promote; high risk also promotes, because risky
// approved work needs attention first.
func PriorityFor(benefit, effort, risk float64) string {
	composite := 0.5*benefit + 0.3*(100-effort) + 0.2*risk
	switch {
	case composite >= 75:
		return PriorityCritical
	case composite >= 55:
		return PriorityHigh
	case composite >= 35:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// MarkUnderReview moves a submitted request into CAB review.
func MarkUnderReview(store ChangeStore, changeID int64) (*ChangeRequest, error) {
	return transition(store, changeID, StatusUnderReview, nil)
}

// ScheduleChange sets the planned window on an approved request.
func ScheduleChange(store ChangeStore, changeID int64, start, end time.Time) (*ChangeRequest, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, fmt.Errorf("%w: scheduled window must end after it starts", ErrValidation)
	}
	return transition(store, changeID, StatusScheduled, func(upd *ChangeUpdate, _ *ChangeRequest) {
		upd.Scheduling = &SchedulingData{ScheduledStart: start, ScheduledEnd: end}
	})
}

// StartChange marks a scheduled change as in progress.
func StartChange(store ChangeStore, changeID int64) (*ChangeRequest, error) {
	now := time.Now().UTC()
	return transition(store, changeID, StatusInProgress, func(upd *ChangeUpdate, cr *ChangeRequest) {
		sched := cr.Scheduling
		if sched == nil {
			sched = &SchedulingData{}
		}
		s := *sched
		s.ActualStart = &now
		upd.Scheduling = &s
	})
}

// CompleteChange marks an in-progress change as completed.
func CompleteChange(store ChangeStore, changeID int64) (*ChangeRequest, error) {
	return finish(store, changeID, StatusCompleted)
}

// FailChange marks an in-progress change as failed.
func FailChange(store ChangeStore, changeID int64) (*ChangeRequest, error) {
	return finish(store, changeID, StatusFailed)
}

func finish(store ChangeStore, changeID int64, to Status) (*ChangeRequest, error) {
	now := time.Now().UTC()
	return transition(store, changeID, to, func(upd *ChangeUpdate, cr *ChangeRequest) {
		sched := cr.Scheduling
		if sched == nil {
			sched = &SchedulingData{}
		}
		s := *sched
		s.ActualEnd = &now
		upd.Scheduling = &s
	})
}

// CancelChange cancels any non-terminal request.
func CancelChange(store ChangeStore, changeID int64) (*ChangeRequest, error) {
	return transition(store, changeID, StatusCancelled, nil)
}

func transition(store ChangeStore, changeID int64, to Status, mutate func(*ChangeUpdate, *ChangeRequest)) (*ChangeRequest, error) {
	cr, err := store.FindChangeByID(changeID)
	if err != nil {
		return nil, err
	}
	if !cr.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move change %d from %s to %s", ErrInvalidState, changeID, cr.Status, to)
	}
	upd := ChangeUpdate{Status: &to}
	if mutate != nil {
		mutate(&upd, cr)
	}
	return store.SaveChangeRequest(changeID, upd)
}
