package main

import "math"

// effortFactors maps factor names to their rating field. A zero rating means
// the factor was not assessed and is skipped.
var effortFactors = []struct {
	name  string
	value func(WizardInput) int
}{
	{FactorComplexity, func(w WizardInput) int { return w.Complexity }},
	{FactorResourceRequirement, func(w WizardInput) int { return w.ResourceRequirement }},
	{FactorTestingCoverage, func(w WizardInput) int { return w.TestingCoverage }},
	{FactorRollbackCapability, func(w WizardInput) int { return w.RollbackCapability }},
	{FactorDocumentationRequired, func(w WizardInput) int { return w.DocumentationRequired }},
	{FactorDependencies, func(w WizardInput) int { return w.Dependencies }},
}

// CalculateEffort scores implementation effort on a 0–100 scale from the
// 1–10 factor ratings. Inverse-scored factors (testing coverage, rollback
// capability) rate a mitigating quality, so their effective value is
// (scale+1)-raw: a well-tested, easily rolled back change costs less effort.
//
// The weighted 1–10 average is scaled by 100/scale (×10 on the canonical
// scale) and rounded to a whole score. Unrated factors are skipped and do
// not dilute the weight sum.
func CalculateEffort(input WizardInput, weights map[string]float64, configs map[string]EffortConfig) ScoreResult {
	if weights == nil {
		weights = DefaultEffortWeights()
	}
	if configs == nil {
		configs = DefaultEffortConfigs()
	}

	factors := make(map[string]FactorBreakdown)
	var totalScore, totalWeight, scaleFactor float64

	for _, f := range effortFactors {
		raw := f.value(input)
		if raw == 0 {
			continue
		}
		cfg, ok := configs[f.name]
		if !ok || cfg.Scale <= 0 {
			continue
		}
		weight, ok := weights[f.name]
		if !ok {
			continue
		}

		clamped := raw
		if clamped < 1 {
			clamped = 1
		}
		if clamped > cfg.Scale {
			clamped = cfg.Scale
		}
		effective := float64(clamped)
		if cfg.Inverse {
			effective = float64(cfg.Scale+1) - effective
		}

		weighted := effective * weight
		factors[f.name] = FactorBreakdown{
			RawValue:      float64(raw),
			ValueScore:    effective,
			CombinedScore: effective,
			WeightedScore: weighted,
		}
		totalScore += weighted
		totalWeight += weight
		scaleFactor = 100 / float64(cfg.Scale)
	}

	result := ScoreResult{Factors: factors}
	if totalWeight > 0 {
		result.Score = math.Round(totalScore / totalWeight * scaleFactor)
	}
	return result
}
