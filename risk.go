package main

import "math"

// Risk level thresholds on the 0–100 score.
const (
	riskMediumThreshold   = 25
	riskHighThreshold     = 50
	riskCriticalThreshold = 75
)

const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

// defaultRiskWeights is the fixed internal weighting of the risk factors.
var defaultRiskWeights = map[string]float64{
	FactorComplexity:         0.25,
	"impactedUsers":          0.20,
	"urgency":                0.15,
	"systemsAffected":        0.15,
	FactorRollbackCapability: 0.15,
	FactorDependencies:       0.10,
}

// CalculateRisk scores the delivery risk of a change on a 0–100 scale and
// classifies it into a level. Unlike benefit and effort, the factor set and
// weights are fixed: every factor derives a 1–10 rating from the wizard
// input, falling back to a mid-scale default when unrated, so the result is
// always defined. Pure and deterministic.
func CalculateRisk(input WizardInput) ScoreResult {
	ratings := map[string]float64{
		FactorComplexity:         ratingOrDefault(input.Complexity, 5),
		"impactedUsers":          impactedUsersRisk(input.ImpactedUsers),
		"urgency":                urgencyRisk(input.UrgencyLevel),
		"systemsAffected":        systemsAffectedRisk(input.SystemCount()),
		FactorRollbackCapability: 11 - ratingOrDefault(input.RollbackCapability, 5),
		FactorDependencies:       ratingOrDefault(input.Dependencies, 3),
	}

	factors := make(map[string]FactorBreakdown, len(ratings))
	var totalScore, totalWeight float64
	for name, rating := range ratings {
		weight := defaultRiskWeights[name]
		weighted := rating * weight
		factors[name] = FactorBreakdown{
			RawValue:      rating,
			ValueScore:    rating,
			CombinedScore: rating,
			WeightedScore: weighted,
		}
		totalScore += weighted
		totalWeight += weight
	}

	score := math.Round(totalScore / totalWeight * 10)
	return ScoreResult{
		Score:   score,
		Level:   RiskLevelForScore(score),
		Factors: factors,
	}
}

// RiskLevelForScore thresholds a 0–100 risk score into a discrete level.
func RiskLevelForScore(score float64) string {
	switch {
	case score < riskMediumThreshold:
		return RiskLevelLow
	case score < riskHighThreshold:
		return RiskLevelMedium
	case score < riskCriticalThreshold:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

func ratingOrDefault(raw int, def float64) float64 {
	if raw < 1 {
		return def
	}
	if raw > 10 {
		return 10
	}
	return float64(raw)
}

func urgencyRisk(level string) float64 {
	switch level {
	case UrgencyLow:
		return 2
	case UrgencyMedium:
		return 5
	case UrgencyHigh:
		return 8
	case UrgencyCritical:
		return 10
	default:
		return 5
	}
}

func impactedUsersRisk(users int) float64 {
	switch {
	case users <= 10:
		return 1
	case users <= 50:
		return 3
	case users <= 250:
		return 5
	case users <= 1000:
		return 7
	case users <= 5000:
		return 9
	default:
		return 10
	}
}

func systemsAffectedRisk(count int) float64 {
	switch {
	case count <= 0:
		return 1
	case count == 1:
		return 2
	case count <= 3:
		return 4
	case count <= 5:
		return 6
	case count <= 8:
		return 8
	default:
		return 10
	}
}
