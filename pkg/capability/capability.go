// Package capability checks a gym's enabled feature codes (gamification,
// loyalty_program, engagement_scoring, …) against a subscription plan's
// feature list, using the same prefix/wildcard matching idiom the platform
// already uses for permission checking.
package capability

import "strings"

// Known feature codes. Plans enable a subset of these; modules gate
// behaviour behind Has(ctx-features, code) rather than hard-coding plan
// tiers.
const (
	Gamification      = "gamification"
	LoyaltyProgram    = "loyalty_program"
	EngagementScoring = "engagement_scoring"
	BodyMetrics       = "body_metrics"
	Campaigns         = "campaigns"
	CustomFields      = "custom_fields"
	AIChat            = "ai_chat"
)

// Has checks whether enabled contains code, or a wildcard ("*") that
// subsumes it.
func Has(enabled []string, code string) bool {
	if code == "" {
		return true
	}
	for _, f := range enabled {
		if f == "*" || f == code {
			return true
		}
		if strings.HasSuffix(f, ".*") {
			prefix := strings.TrimSuffix(f, ".*")
			if strings.HasPrefix(code, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAny checks whether enabled contains any of the given codes.
func HasAny(enabled []string, codes ...string) bool {
	for _, c := range codes {
		if Has(enabled, c) {
			return true
		}
	}
	return false
}

// HasAll checks whether enabled contains every one of the given codes.
func HasAll(enabled []string, codes ...string) bool {
	for _, c := range codes {
		if !Has(enabled, c) {
			return false
		}
	}
	return true
}

// Merge combines feature lists from plan defaults and gym-level overrides,
// de-duplicating entries.
func Merge(sets ...[]string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, set := range sets {
		for _, f := range set {
			if !seen[f] {
				seen[f] = true
				result = append(result, f)
			}
		}
	}
	return result
}
