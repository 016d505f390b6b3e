package main

import (
	"math"
	"strconv"
	"strings"
)

// FactorBreakdown records how one factor contributed to a score. Benefit
// factors fill every field; effort and risk factors have no time dimension.
type FactorBreakdown struct {
	RawValue      float64 `json:"rawValue"`
	RawTimeline   int     `json:"rawTimeline,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	ValueScore    float64 `json:"valueScore"`
	TimeScore     float64 `json:"timeScore,omitempty"`
	CombinedScore float64 `json:"combinedScore"`
	WeightedScore float64 `json:"weightedScore"`
}

// ScoreResult is the output of one calculator run. Score is always on a
// 0–100 scale; Level is set by the risk calculator only.
type ScoreResult struct {
	Score   float64                    `json:"score"`
	Level   string                     `json:"level,omitempty"`
	Factors map[string]FactorBreakdown `json:"factors"`
}

// BenefitConfig is the per-factor scoring configuration. A zero
// ValueFor100Points disables value scoring for the factor (contributes 0,
// never divides). A zero TimeDecayPerMonth means no decay.
type BenefitConfig struct {
	ValueFor100Points float64 `json:"valueFor100Points"`
	ValueUnit         string  `json:"valueUnit"`
	TimeDecayPerMonth float64 `json:"timeDecayPerMonth"`
}

// EffortConfig describes the rating scale for one effort factor. Inverse
// factors rate a mitigating quality (better coverage, better rollback), so a
// higher raw rating must lower the effort score.
type EffortConfig struct {
	Scale   int  `json:"scale"`
	Inverse bool `json:"inverse"`
}

// Factor names, shared by weights, configs and the CAB assessment mapping.
const (
	FactorRevenueImprovement = "revenueImprovement"
	FactorCostReduction      = "costReduction"
	FactorCustomerImpact     = "customerImpact"
	FactorProcessImprovement = "processImprovement"
	FactorInternalQoL        = "internalQoL"
	FactorRiskReduction      = "riskReduction"
	FactorStrategicAlignment = "strategicAlignment"

	FactorComplexity            = "complexity"
	FactorResourceRequirement   = "resourceRequirement"
	FactorTestingCoverage       = "testingCoverage"
	FactorRollbackCapability    = "rollbackCapability"
	FactorDocumentationRequired = "documentationRequired"
	FactorDependencies          = "dependencies"
)

// DefaultBenefitWeights returns the default per-factor multipliers. The set
// is not normalized; the calculators divide by the sum of weights actually
// applied, so skipped factors never require renormalization.
func DefaultBenefitWeights() map[string]float64 {
	return map[string]float64{
		FactorRevenueImprovement: 0.25,
		FactorCostReduction:      0.25,
		FactorCustomerImpact:     0.15,
		FactorProcessImprovement: 0.15,
		FactorInternalQoL:        0.10,
		FactorRiskReduction:      0.15,
		FactorStrategicAlignment: 0.05,
	}
}

func DefaultEffortWeights() map[string]float64 {
	return map[string]float64{
		FactorComplexity:            0.30,
		FactorResourceRequirement:   0.20,
		FactorTestingCoverage:       0.20,
		FactorRollbackCapability:    0.15,
		FactorDocumentationRequired: 0.05,
		FactorDependencies:          0.10,
	}
}

// DefaultBenefitConfigs returns the built-in scoring configuration. The
// sqlite scoring_configs table is seeded from this set and the active rows
// win at calculation time.
func DefaultBenefitConfigs() map[string]BenefitConfig {
	return map[string]BenefitConfig{
		FactorRevenueImprovement: {ValueFor100Points: 100000, ValueUnit: "GBP", TimeDecayPerMonth: 5},
		FactorCostReduction:      {ValueFor100Points: 50000, ValueUnit: "GBP", TimeDecayPerMonth: 5},
		FactorCustomerImpact:     {ValueFor100Points: 1000, ValueUnit: "customers", TimeDecayPerMonth: 3},
		FactorProcessImprovement: {ValueFor100Points: 25, ValueUnit: "percent", TimeDecayPerMonth: 4},
		FactorInternalQoL:        {ValueFor100Points: 100, ValueUnit: "users", TimeDecayPerMonth: 2},
		FactorRiskReduction:      {ValueFor100Points: 50, ValueUnit: "percent", TimeDecayPerMonth: 3},
		FactorStrategicAlignment: {ValueFor100Points: 10, ValueUnit: "rating", TimeDecayPerMonth: 0},
	}
}

func DefaultEffortConfigs() map[string]EffortConfig {
	return map[string]EffortConfig{
		FactorComplexity:            {Scale: 10},
		FactorResourceRequirement:   {Scale: 10},
		FactorTestingCoverage:       {Scale: 10, Inverse: true},
		FactorRollbackCapability:    {Scale: 10, Inverse: true},
		FactorDocumentationRequired: {Scale: 10},
		FactorDependencies:          {Scale: 10},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo1 rounds to one decimal place, the published benefit precision.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// parseAmount parses a free-form numeric wizard value. Currency strings keep
// their digits, decimal point and sign ("£100,000" -> 100000); anything
// unparsable scores as zero rather than erroring.
func parseAmount(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseMonths parses a timeline as whole months, defaulting to 12 when the
// field is absent or unparsable. Negative timelines are treated as immediate.
func parseMonths(s string) int {
	t := strings.TrimSpace(s)
	if t == "" {
		return 12
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		f, ferr := strconv.ParseFloat(t, 64)
		if ferr != nil {
			return 12
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}
