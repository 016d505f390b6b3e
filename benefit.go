package main

// benefitFactor binds a reason flag to its detail block. The calculator
// iterates this registry so per-factor semantics live in one place.
type benefitFactor struct {
	name     string
	selected func(ChangeReasons) bool
	details  func(WizardInput) (raw, timeline, explanation string, ok bool)
}

var benefitFactors = []benefitFactor{
	{
		name:     FactorRevenueImprovement,
		selected: func(r ChangeReasons) bool { return r.RevenueImprovement },
		details: func(w WizardInput) (string, string, string, bool) {
			if w.RevenueDetails == nil {
				return "", "", "", false
			}
			d := w.RevenueDetails
			return d.ExpectedRevenue, d.RevenueTimeline, d.RevenueDescription, true
		},
	},
	{
		name:     FactorCostReduction,
		selected: func(r ChangeReasons) bool { return r.CostReduction },
		details: func(w WizardInput) (string, string, string, bool) {
			if w.CostReductionDetails == nil {
				return "", "", "", false
			}
			d := w.CostReductionDetails
			return d.ExpectedSavings, d.SavingsTimeline, d.SavingsDescription, true
		},
	},
	{
		name:     FactorCustomerImpact,
		selected: func(r ChangeReasons) bool { return r.CustomerImpact },
		details: func(w WizardInput) (string, string, string, bool) {
			if w.CustomerImpactDetails == nil {
				return "", "", "", false
			}
			d := w.CustomerImpactDetails
			return d.CustomersAffected, d.ImpactTimeline, d.ImpactDescription, true
		},
	},
	{
		name:     FactorProcessImprovement,
		selected: func(r ChangeReasons) bool { return r.ProcessImprovement },
		details: func(w WizardInput) (string, string, string, bool) {
			if w.ProcessImprovementDetails == nil {
				return "", "", "", false
			}
			d := w.ProcessImprovementDetails
			return d.ExpectedEfficiency, d.ImprovementTimeline, d.ProcessDescription, true
		},
	},
	{
		name:     FactorInternalQoL,
		selected: func(r ChangeReasons) bool { return r.InternalQoL },
		details: func(w WizardInput) (string, string, string, bool) {
			if w.InternalQoLDetails == nil {
				return "", "", "", false
			}
			d := w.InternalQoLDetails
			return d.UsersAffected, d.QoLTimeline, d.ExpectedImprovements, true
		},
	},
	{
		name:     FactorRiskReduction,
		selected: func(r ChangeReasons) bool { return r.RiskReduction },
		details: func(w WizardInput) (string, string, string, bool) {
			if w.RiskReductionDetails == nil {
				return "", "", "", false
			}
			d := w.RiskReductionDetails
			return d.ExpectedReduction, d.MitigationTimeline, d.RiskDescription, true
		},
	},
}

// CalculateBenefit scores the business benefit of a change on a 0–100 scale.
//
// Each selected reason with a detail block and an active config contributes
// valueScore (0–100, value against the configured value-for-100-points) plus
// timeScore (0–100, decaying per month of timeline), weighted by the factor
// weight. A factor missing its details, config or weight is skipped entirely
// and does not dilute the weight sum — fewer justifications never penalize.
//
// The strategicAlignment pseudo-factor is always scored: raw value 80 when a
// revenue or cost reason is selected, 50 otherwise, overridable by a CAB
// rating on the input. It has no time dimension.
//
// Pure: nil weights/configs fall back to the defaults, and identical input
// always yields an identical result.
func CalculateBenefit(input WizardInput, weights map[string]float64, configs map[string]BenefitConfig) ScoreResult {
	if weights == nil {
		weights = DefaultBenefitWeights()
	}
	if configs == nil {
		configs = DefaultBenefitConfigs()
	}

	factors := make(map[string]FactorBreakdown)
	var totalScore, totalWeight float64

	for _, f := range benefitFactors {
		if !f.selected(input.ChangeReasons) {
			continue
		}
		rawStr, timelineStr, explanation, ok := f.details(input)
		if !ok {
			continue
		}
		cfg, ok := configs[f.name]
		if !ok {
			continue
		}
		weight, ok := weights[f.name]
		if !ok {
			continue
		}

		raw := parseAmount(rawStr)
		months := parseMonths(timelineStr)

		var valueScore float64
		if cfg.ValueFor100Points > 0 {
			valueScore = clamp(raw/cfg.ValueFor100Points*100, 0, 100)
		}
		timeScore := 100.0
		if cfg.TimeDecayPerMonth > 0 {
			timeScore = clamp(100-float64(months)*cfg.TimeDecayPerMonth, 0, 100)
		}

		combined := valueScore + timeScore
		weighted := combined * weight

		factors[f.name] = FactorBreakdown{
			RawValue:      raw,
			RawTimeline:   months,
			Explanation:   explanation,
			ValueScore:    valueScore,
			TimeScore:     timeScore,
			CombinedScore: combined,
			WeightedScore: weighted,
		}
		totalScore += weighted
		totalWeight += weight
	}

	// Always-on strategic alignment: value-scored only, no time dimension.
	if cfg, ok := configs[FactorStrategicAlignment]; ok {
		if weight, ok := weights[FactorStrategicAlignment]; ok {
			raw := float64(input.StrategicAlignment)
			if raw == 0 {
				if input.ChangeReasons.RevenueImprovement || input.ChangeReasons.CostReduction {
					raw = 80
				} else {
					raw = 50
				}
			}
			var valueScore float64
			if cfg.ValueFor100Points > 0 {
				valueScore = clamp(raw/cfg.ValueFor100Points*100, 0, 100)
			}
			weighted := valueScore * weight
			factors[FactorStrategicAlignment] = FactorBreakdown{
				RawValue:      raw,
				ValueScore:    valueScore,
				CombinedScore: valueScore,
				WeightedScore: weighted,
			}
			totalScore += weighted
			totalWeight += weight
		}
	}

	result := ScoreResult{Factors: factors}
	if totalWeight > 0 {
		// Combined scores range 0–200; halving publishes on a 0–100 scale.
		result.Score = roundTo1(totalScore / totalWeight / 2)
	}
	return result
}
