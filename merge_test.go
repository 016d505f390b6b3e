package main

import (
	"reflect"
	"testing"
)

func sampleSubmission() WizardInput {
	return WizardInput{
		ChangeReasons: ChangeReasons{RevenueImprovement: true, InternalQoL: true},
		RevenueDetails: &RevenueDetails{
			ExpectedRevenue:    "£80,000",
			RevenueTimeline:    "9",
			RevenueDescription: "new checkout flow",
		},
		InternalQoLDetails: &InternalQoLDetails{
			UsersAffected:        "120",
			QoLTimeline:          "2",
			ExpectedImprovements: "fewer manual steps",
		},
		ImpactedUsers:        300,
		SystemsAffected:      []string{"checkout", "billing"},
		SystemsAffectedCount: 2,
		EstimatedEffortHours: 80,
		EstimatedCost:        12000,
		Departments:          []string{"engineering"},
		UrgencyLevel:         UrgencyMedium,
		Complexity:           5,
		TestingCoverage:      6,
		RollbackCapability:   7,
	}
}

func TestMergeAssessmentEmptyIsNonDestructive(t *testing.T) {
	original := sampleSubmission()

	if got := MergeAssessment(original, nil); !reflect.DeepEqual(got, original) {
		t.Fatalf("nil assessment changed the document:\n%+v\n%+v", got, original)
	}
	if got := MergeAssessment(original, &CabAssessment{}); !reflect.DeepEqual(got, original) {
		t.Fatalf("empty assessment changed the document:\n%+v\n%+v", got, original)
	}
}

func TestMergeAssessmentMapsRevenueFields(t *testing.T) {
	original := sampleSubmission()
	merged := MergeAssessment(original, &CabAssessment{
		RevenueImprovement: &AssessmentFactor{
			RawValue:    "£60,000",
			RawTimeline: "15",
			Explanation: "CAB considers the forecast optimistic",
		},
	})

	if !merged.ChangeReasons.RevenueImprovement {
		t.Fatal("revenue reason flag must be set")
	}
	d := merged.RevenueDetails
	if d == nil {
		t.Fatal("revenue details missing after merge")
	}
	if d.ExpectedRevenue != "£60,000" || d.RevenueTimeline != "15" || d.RevenueDescription != "CAB considers the forecast optimistic" {
		t.Fatalf("revenue mapping wrong: %+v", d)
	}
	// Untouched blocks survive.
	if !reflect.DeepEqual(merged.InternalQoLDetails, original.InternalQoLDetails) {
		t.Fatal("internalQoL details must be preserved")
	}
	// The original document is not mutated.
	if original.RevenueDetails.ExpectedRevenue != "£80,000" {
		t.Fatal("merge mutated the original document")
	}
}

func TestMergeAssessmentCostSavingsMapsToCostReduction(t *testing.T) {
	merged := MergeAssessment(WizardInput{}, &CabAssessment{
		CostSavings: &AssessmentFactor{RawValue: "£25,000", RawTimeline: "6", Explanation: "licence savings"},
	})

	if !merged.ChangeReasons.CostReduction {
		t.Fatal("costSavings assessment must set the costReduction reason")
	}
	d := merged.CostReductionDetails
	if d == nil || d.ExpectedSavings != "£25,000" || d.SavingsTimeline != "6" || d.SavingsDescription != "licence savings" {
		t.Fatalf("costSavings mapping wrong: %+v", d)
	}
}

func TestMergeAssessmentAllBenefitBlocks(t *testing.T) {
	merged := MergeAssessment(WizardInput{}, &CabAssessment{
		CustomerImpact:     &AssessmentFactor{RawValue: "500", RawTimeline: "3", Explanation: "ci"},
		ProcessImprovement: &AssessmentFactor{RawValue: "15", RawTimeline: "4", Explanation: "pi"},
		InternalQoL:        &AssessmentFactor{RawValue: "40", RawTimeline: "1", Explanation: "qol"},
	})

	if d := merged.CustomerImpactDetails; d == nil || d.CustomersAffected != "500" || d.ImpactTimeline != "3" || d.ImpactDescription != "ci" {
		t.Fatalf("customerImpact mapping wrong: %+v", d)
	}
	if d := merged.ProcessImprovementDetails; d == nil || d.ExpectedEfficiency != "15" || d.ImprovementTimeline != "4" || d.ProcessDescription != "pi" {
		t.Fatalf("processImprovement mapping wrong: %+v", d)
	}
	if d := merged.InternalQoLDetails; d == nil || d.UsersAffected != "40" || d.QoLTimeline != "1" || d.ExpectedImprovements != "qol" {
		t.Fatalf("internalQoL mapping wrong: %+v", d)
	}
	if !merged.ChangeReasons.CustomerImpact || !merged.ChangeReasons.ProcessImprovement || !merged.ChangeReasons.InternalQoL {
		t.Fatalf("reason flags not set: %+v", merged.ChangeReasons)
	}
}

func TestMergeAssessmentScalarOverrides(t *testing.T) {
	hours := 120.0
	cost := 20000.0
	complexity := 8
	testing_ := 4
	urgency := UrgencyHigh
	users := 4500
	strategic := 6

	original := sampleSubmission()
	merged := MergeAssessment(original, &CabAssessment{
		HoursEstimated:     &hours,
		CostEstimated:      &cost,
		Complexity:         &complexity,
		TestingRequired:    &testing_,
		Urgency:            &urgency,
		ImpactedUsers:      &users,
		StrategicAlignment: &strategic,
	})

	if merged.EstimatedEffortHours != 120 {
		t.Fatalf("hoursEstimated must map to estimatedEffortHours, got %v", merged.EstimatedEffortHours)
	}
	if merged.EstimatedCost != 20000 {
		t.Fatalf("costEstimated must map to estimatedCost, got %v", merged.EstimatedCost)
	}
	if merged.Complexity != 8 || merged.TestingCoverage != 4 || merged.UrgencyLevel != UrgencyHigh {
		t.Fatalf("scalar overrides wrong: %+v", merged)
	}
	if merged.ImpactedUsers != 4500 || merged.StrategicAlignment != 6 {
		t.Fatalf("scalar overrides wrong: %+v", merged)
	}
	// Absent assessment fields must not clear existing values.
	if merged.RollbackCapability != original.RollbackCapability {
		t.Fatal("absent rollbackCapability cleared an existing value")
	}
	if !reflect.DeepEqual(merged.Departments, original.Departments) {
		t.Fatal("departments must be preserved")
	}
}

func TestMergeAssessmentSystemsAffectedList(t *testing.T) {
	original := sampleSubmission()
	merged := MergeAssessment(original, &CabAssessment{
		SystemsAffectedList: []string{"checkout", "billing", "warehouse"},
	})
	if !reflect.DeepEqual(merged.SystemsAffected, []string{"checkout", "billing", "warehouse"}) {
		t.Fatalf("systemsAffected list wrong: %v", merged.SystemsAffected)
	}
	if merged.SystemsAffectedCount != 3 {
		t.Fatalf("derived count = %d, want 3", merged.SystemsAffectedCount)
	}
}

func TestMergeAssessmentCountWithoutList(t *testing.T) {
	count := 5
	merged := MergeAssessment(sampleSubmission(), &CabAssessment{SystemsAffected: &count})
	if merged.SystemsAffectedCount != 5 {
		t.Fatalf("count = %d, want 5", merged.SystemsAffectedCount)
	}
	// The explicit list is untouched by a bare count revision.
	if len(merged.SystemsAffected) != 2 {
		t.Fatalf("list should be preserved, got %v", merged.SystemsAffected)
	}
}

func TestMergedDocumentFeedsCalculators(t *testing.T) {
	// CAB-revised values, not the requester's, are what gets scored.
	original := sampleSubmission()
	merged := MergeAssessment(original, &CabAssessment{
		RevenueImprovement: &AssessmentFactor{RawValue: "£200,000", RawTimeline: "0", Explanation: "revised"},
	})
	before := CalculateBenefit(original, nil, nil).Score
	after := CalculateBenefit(merged, nil, nil).Score
	if after <= before {
		t.Fatalf("revised-up revenue should raise the benefit score: %v -> %v", before, after)
	}
}
