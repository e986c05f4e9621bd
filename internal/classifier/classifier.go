// Package classifier scores free-text submissions for safety risk. The
// classifier is a pure function over its injected rule set: no I/O, no shared
// mutable state, identical input always yields an identical result. That
// determinism is what makes every recorded decision reproducible during a
// compliance review.
package classifier

import (
	"strings"

	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/rules"
)

// Classifier evaluates text against a fixed rule set. Construct once at
// startup and share freely; Classify is safe for concurrent use.
type Classifier struct {
	rs rules.RuleSet
}

// New returns a Classifier bound to the given rule set. The rule set is
// copied by value and never modified.
func New(rs rules.RuleSet) *Classifier {
	return &Classifier{rs: rs}
}

// Classify scores the text and assigns a safety level.
//
// Matching is case-insensitive substring matching. Tiers are scanned in
// severity order (crisis, high-risk, sensitive) and every match contributes
// its tier weight and is appended to MatchedSignals in scan order. Pattern
// bonuses are added on top: two or more distinct crisis keywords, and the
// presence of finality, hopelessness or urgency phrases. The total is capped
// at 100.
//
// Level assignment checks score thresholds OR tier membership, most severe
// first. Tier membership deliberately overrides arithmetic: a single
// crisis-tier keyword forces CRISIS even when the raw score is below the
// threshold, so a severe phrase is never diluted by weighting.
//
// Empty text classifies as SAFE with score 0.
func (c *Classifier) Classify(text string) model.ClassificationResult {
	lower := strings.ToLower(text)

	var (
		score      int
		signals    []string
		crisisHits int
		highHits   int
		sensitHits int
	)

	for _, kw := range c.rs.CrisisKeywords {
		if strings.Contains(lower, kw) {
			score += c.rs.CrisisWeight
			signals = append(signals, kw)
			crisisHits++
		}
	}
	for _, kw := range c.rs.HighRiskKeywords {
		if strings.Contains(lower, kw) {
			score += c.rs.HighRiskWeight
			signals = append(signals, kw)
			highHits++
		}
	}
	for _, kw := range c.rs.SensitiveKeywords {
		if strings.Contains(lower, kw) {
			score += c.rs.SensitiveWeight
			signals = append(signals, kw)
			sensitHits++
		}
	}

	if crisisHits >= 2 {
		score += c.rs.MultiCrisisBonus
	}
	if containsAny(lower, c.rs.FinalityPhrases) {
		score += c.rs.FinalityBonus
	}
	if containsAny(lower, c.rs.HopelessnessPhrases) {
		score += c.rs.HopelessnessBonus
	}
	if containsAny(lower, c.rs.UrgencyPhrases) {
		score += c.rs.UrgencyBonus
	}
	if score > 100 {
		score = 100
	}

	// First match wins; the tier-membership side of each OR keeps single
	// severe phrases from being diluted.
	var level model.SafetyLevel
	switch {
	case score >= c.rs.CrisisThreshold || crisisHits > 0:
		level = model.LevelCrisis
	case score >= c.rs.HighRiskThreshold || highHits > 0:
		level = model.LevelHighRisk
	case score >= c.rs.SensitiveThreshold || sensitHits > 0:
		level = model.LevelSensitive
	default:
		level = model.LevelSafe
	}

	intervene := level == model.LevelCrisis || level == model.LevelHighRisk

	return model.ClassificationResult{
		Level:                level,
		Score:                score,
		MatchedSignals:       signals,
		Urgency:              urgencyFor(level),
		RequiresIntervention: intervene,
		HideFromPublic:       intervene,
	}
}

// urgencyFor mirrors the safety level onto the urgency scale.
func urgencyFor(level model.SafetyLevel) model.Urgency {
	switch level {
	case model.LevelCrisis:
		return model.UrgencyCritical
	case model.LevelHighRisk:
		return model.UrgencyHigh
	case model.LevelSensitive:
		return model.UrgencyMedium
	case model.LevelSafe:
		return model.UrgencyLow
	}
	return model.UrgencyLow
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
