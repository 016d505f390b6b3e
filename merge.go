package main

// AssessmentFactor is one CAB-revised benefit block. Field names follow the
// assessment form, not the wizard; MergeAssessment maps between the two.
type AssessmentFactor struct {
	RawValue    string `json:"rawValue"`
	RawTimeline string `json:"rawTimeline"`
	Explanation string `json:"explanation"`
}

// CabAssessment carries the reviewer's revisions. Every field is optional:
// a nil field means "leave the requester's value unchanged", never "clear".
type CabAssessment struct {
	RevenueImprovement *AssessmentFactor `json:"revenueImprovement,omitempty"`
	CostSavings        *AssessmentFactor `json:"costSavings,omitempty"`
	CustomerImpact     *AssessmentFactor `json:"customerImpact,omitempty"`
	ProcessImprovement *AssessmentFactor `json:"processImprovement,omitempty"`
	InternalQoL        *AssessmentFactor `json:"internalQoL,omitempty"`

	HoursEstimated        *float64 `json:"hoursEstimated,omitempty"`
	CostEstimated         *float64 `json:"costEstimated,omitempty"`
	ResourceRequirement   *int     `json:"resourceRequirement,omitempty"`
	Complexity            *int     `json:"complexity,omitempty"`
	SystemsAffected       *int     `json:"systemsAffected,omitempty"`
	TestingRequired       *int     `json:"testingRequired,omitempty"`
	DocumentationRequired *int     `json:"documentationRequired,omitempty"`
	Urgency               *string  `json:"urgency,omitempty"`
	ImpactedUsers         *int     `json:"impactedUsers,omitempty"`
	SystemsAffectedList   []string `json:"systemsAffectedList,omitempty"`
	Dependencies          *int     `json:"dependencies,omitempty"`
	StrategicAlignment    *int     `json:"strategicAlignment,omitempty"`
}

// IsEmpty reports whether the assessment revises nothing.
func (a *CabAssessment) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.RevenueImprovement == nil && a.CostSavings == nil &&
		a.CustomerImpact == nil && a.ProcessImprovement == nil &&
		a.InternalQoL == nil && a.HoursEstimated == nil &&
		a.CostEstimated == nil && a.ResourceRequirement == nil &&
		a.Complexity == nil && a.SystemsAffected == nil &&
		a.TestingRequired == nil && a.DocumentationRequired == nil &&
		a.Urgency == nil && a.ImpactedUsers == nil &&
		len(a.SystemsAffectedList) == 0 && a.Dependencies == nil &&
		a.StrategicAlignment == nil
}

// MergeAssessment combines a reviewer's revisions with the original
// submission into the document the calculators will score. The original is
// copied, untouched fields survive, and each supplied benefit block both
// sets its reason flag and replaces the wizard detail block (costSavings
// maps onto the costReduction reason). Merging an empty assessment returns
// a document equal to the original.
func MergeAssessment(original WizardInput, a *CabAssessment) WizardInput {
	merged := original
	if a == nil {
		return merged
	}

	if f := a.RevenueImprovement; f != nil {
		merged.ChangeReasons.RevenueImprovement = true
		merged.RevenueDetails = &RevenueDetails{
			ExpectedRevenue:    f.RawValue,
			RevenueTimeline:    f.RawTimeline,
			RevenueDescription: f.Explanation,
		}
	}
	if f := a.CostSavings; f != nil {
		merged.ChangeReasons.CostReduction = true
		merged.CostReductionDetails = &CostReductionDetails{
			ExpectedSavings:    f.RawValue,
			SavingsTimeline:    f.RawTimeline,
			SavingsDescription: f.Explanation,
		}
	}
	if f := a.CustomerImpact; f != nil {
		merged.ChangeReasons.CustomerImpact = true
		merged.CustomerImpactDetails = &CustomerImpactDetails{
			CustomersAffected: f.RawValue,
			ImpactTimeline:    f.RawTimeline,
			ImpactDescription: f.Explanation,
		}
	}
	if f := a.ProcessImprovement; f != nil {
		merged.ChangeReasons.ProcessImprovement = true
		merged.ProcessImprovementDetails = &ProcessImprovementDetails{
			ExpectedEfficiency:  f.RawValue,
			ImprovementTimeline: f.RawTimeline,
			ProcessDescription:  f.Explanation,
		}
	}
	if f := a.InternalQoL; f != nil {
		merged.ChangeReasons.InternalQoL = true
		merged.InternalQoLDetails = &InternalQoLDetails{
			UsersAffected:        f.RawValue,
			QoLTimeline:          f.RawTimeline,
			ExpectedImprovements: f.Explanation,
		}
	}

	if a.HoursEstimated != nil {
		merged.EstimatedEffortHours = *a.HoursEstimated
	}
	if a.CostEstimated != nil {
		merged.EstimatedCost = *a.CostEstimated
	}
	if a.ResourceRequirement != nil {
		merged.ResourceRequirement = *a.ResourceRequirement
	}
	if a.Complexity != nil {
		merged.Complexity = *a.Complexity
	}
	if a.SystemsAffected != nil {
		merged.SystemsAffectedCount = *a.SystemsAffected
	}
	if a.TestingRequired != nil {
		merged.TestingCoverage = *a.TestingRequired
	}
	if a.DocumentationRequired != nil {
		merged.DocumentationRequired = *a.DocumentationRequired
	}
	if a.Urgency != nil {
		merged.UrgencyLevel = *a.Urgency
	}
	if a.ImpactedUsers != nil {
		merged.ImpactedUsers = *a.ImpactedUsers
	}
	if len(a.SystemsAffectedList) > 0 {
		merged.SystemsAffected = a.SystemsAffectedList
		merged.SystemsAffectedCount = len(a.SystemsAffectedList)
	}
	if a.Dependencies != nil {
		merged.Dependencies = *a.Dependencies
	}
	if a.StrategicAlignment != nil {
		merged.StrategicAlignment = *a.StrategicAlignment
	}

	return merged
}
