package capability

import "testing"

func TestHas(t *testing.T) {
	enabled := []string{LoyaltyProgram, "reports.*"}

	if !Has(enabled, LoyaltyProgram) {
		t.Error("expected exact match to be enabled")
	}
	if Has(enabled, Gamification) {
		t.Error("expected gamification to be disabled")
	}
	if !Has(enabled, "reports.export") {
		t.Error("expected wildcard reports.* to cover reports.export")
	}
	if !Has([]string{"*"}, AIChat) {
		t.Error("expected wildcard * to cover everything")
	}
	if !Has(enabled, "") {
		t.Error("empty code should always pass")
	}
}

func TestHasAnyAll(t *testing.T) {
	enabled := []string{LoyaltyProgram, EngagementScoring}

	if !HasAny(enabled, Gamification, LoyaltyProgram) {
		t.Error("expected HasAny to find loyalty_program")
	}
	if HasAll(enabled, LoyaltyProgram, Gamification) {
		t.Error("expected HasAll to fail: gamification missing")
	}
	if !HasAll(enabled, LoyaltyProgram, EngagementScoring) {
		t.Error("expected HasAll to pass: both present")
	}
}

func TestMerge(t *testing.T) {
	result := Merge([]string{LoyaltyProgram}, []string{LoyaltyProgram, Gamification})
	if len(result) != 2 {
		t.Fatalf("expected 2 deduplicated entries, got %d: %v", len(result), result)
	}
}
