package main

import (
	"reflect"
	"testing"
)

func TestCalculateRiskWorstCase(t *testing.T) {
	input := WizardInput{
		Complexity:         10,
		ImpactedUsers:      20000,
		UrgencyLevel:       UrgencyCritical,
		SystemsAffected:    []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"},
		RollbackCapability: 1,
		Dependencies:       10,
	}
	result := CalculateRisk(input)
	if result.Score != 100 {
		t.Fatalf("score = %v, want 100", result.Score)
	}
	if result.Level != RiskLevelCritical {
		t.Fatalf("level = %q, want critical", result.Level)
	}
}

func TestCalculateRiskBestCase(t *testing.T) {
	input := WizardInput{
		Complexity:         1,
		ImpactedUsers:      3,
		UrgencyLevel:       UrgencyLow,
		RollbackCapability: 10,
		Dependencies:       1,
	}
	result := CalculateRisk(input)
	if result.Score >= riskMediumThreshold {
		t.Fatalf("score = %v, want below %d", result.Score, riskMediumThreshold)
	}
	if result.Level != RiskLevelLow {
		t.Fatalf("level = %q, want low", result.Level)
	}
}

func TestCalculateRiskDefaultsAreDefined(t *testing.T) {
	// A completely unrated submission still yields a defined mid-range score.
	result := CalculateRisk(WizardInput{})
	if result.Score <= 0 || result.Score > 100 {
		t.Fatalf("score = %v, want a defined score in (0,100]", result.Score)
	}
	if result.Level == "" {
		t.Fatal("expected a level classification")
	}
	if len(result.Factors) != 6 {
		t.Fatalf("expected all 6 risk factors, got %d", len(result.Factors))
	}
}

func TestCalculateRiskIsDeterministic(t *testing.T) {
	input := WizardInput{Complexity: 8, ImpactedUsers: 400, UrgencyLevel: UrgencyHigh, Dependencies: 6}
	first := CalculateRisk(input)
	second := CalculateRisk(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ:\n%+v\n%+v", first, second)
	}
}

func TestCalculateRiskPrefersSystemListOverCount(t *testing.T) {
	withList := CalculateRisk(WizardInput{SystemsAffected: []string{"crm", "billing"}, SystemsAffectedCount: 9})
	withCount := CalculateRisk(WizardInput{SystemsAffectedCount: 2})
	if withList.Factors["systemsAffected"].RawValue != withCount.Factors["systemsAffected"].RawValue {
		t.Fatalf("explicit list should win over stale count: %v vs %v",
			withList.Factors["systemsAffected"].RawValue, withCount.Factors["systemsAffected"].RawValue)
	}
}

func TestRiskLevelForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, RiskLevelLow},
		{24, RiskLevelLow},
		{25, RiskLevelMedium},
		{49, RiskLevelMedium},
		{50, RiskLevelHigh},
		{74, RiskLevelHigh},
		{75, RiskLevelCritical},
		{100, RiskLevelCritical},
	}
	for _, c := range cases {
		if got := RiskLevelForScore(c.score); got != c.want {
			t.Errorf("RiskLevelForScore(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}
