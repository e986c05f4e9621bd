// Package rules defines the versioned rule table the safety classifier runs
// on: three disjoint keyword tiers, pattern-bonus phrase lists and level
// thresholds. Rules are plain data loaded from a TOML file at startup so they
// can be tested and swapped without touching classifier logic.
package rules

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/safehaven/peer-support-core/internal/model"
)

// RuleSet carries everything the classifier and the resource catalog need.
// Keyword tiers must be disjoint; the loader rejects files that repeat a
// keyword across tiers.
type RuleSet struct {
	Version string `toml:"version"`

	CrisisKeywords    []string `toml:"crisis_keywords"`
	HighRiskKeywords  []string `toml:"high_risk_keywords"`
	SensitiveKeywords []string `toml:"sensitive_keywords"`

	FinalityPhrases     []string `toml:"finality_phrases"`
	HopelessnessPhrases []string `toml:"hopelessness_phrases"`
	UrgencyPhrases      []string `toml:"urgency_phrases"`

	CrisisWeight    int `toml:"crisis_weight"`
	HighRiskWeight  int `toml:"high_risk_weight"`
	SensitiveWeight int `toml:"sensitive_weight"`

	MultiCrisisBonus  int `toml:"multi_crisis_bonus"`
	FinalityBonus     int `toml:"finality_bonus"`
	HopelessnessBonus int `toml:"hopelessness_bonus"`
	UrgencyBonus      int `toml:"urgency_bonus"`

	CrisisThreshold    int `toml:"crisis_threshold"`
	HighRiskThreshold  int `toml:"high_risk_threshold"`
	SensitiveThreshold int `toml:"sensitive_threshold"`

	// Category heuristics for the resource catalog: a matched signal found in
	// one of these lists steers resource selection toward the matching
	// category.
	SuicideIndicators []string `toml:"suicide_indicators"`
	AbuseIndicators   []string `toml:"abuse_indicators"`
}

// file mirrors the on-disk layout: the rule table plus the emergency
// resource catalog in one versioned document.
type file struct {
	RuleSet
	Resources []model.EmergencyResource `toml:"resource"`
}

// Default returns the built-in rule set used when no rules file is
// configured. Tests run against this set as well.
func Default() RuleSet {
	return RuleSet{
		Version: "builtin-1",
		CrisisKeywords: []string{
			"kill myself", "suicide", "end my life", "want to die",
			"better off dead", "no reason to live",
		},
		HighRiskKeywords: []string{
			"hurt myself", "self harm", "cutting", "overdose",
			"hate myself", "being abused", "hits me", "touches me",
		},
		SensitiveKeywords: []string{
			"sad", "alone", "lonely", "depressed", "anxious",
			"scared", "crying", "bullied", "worried",
		},
		FinalityPhrases:     []string{"never again", "last time", "goodbye", "forever"},
		HopelessnessPhrases: []string{"hopeless", "no point", "nothing matters", "give up", "can't go on"},
		UrgencyPhrases:      []string{"tonight", "right now", "this is it"},
		CrisisWeight:        35,
		HighRiskWeight:      20,
		SensitiveWeight:     10,
		MultiCrisisBonus:    15,
		FinalityBonus:       10,
		HopelessnessBonus:   8,
		UrgencyBonus:        12,
		CrisisThreshold:     70,
		HighRiskThreshold:   40,
		SensitiveThreshold:  20,
		SuicideIndicators: []string{
			"kill myself", "suicide", "end my life", "want to die",
			"better off dead", "no reason to live", "hurt myself",
			"self harm", "cutting", "overdose",
		},
		AbuseIndicators: []string{"being abused", "hits me", "touches me"},
	}
}

// Load reads a rule file from disk, fills in the rule table and the resource
// catalog, and validates the result. The rule table and catalog travel
// together so that a rules rollout is a single atomic file swap.
func Load(path string) (RuleSet, []model.EmergencyResource, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return RuleSet{}, nil, fmt.Errorf("decode rules file: %w", err)
	}
	if err := f.RuleSet.Validate(); err != nil {
		return RuleSet{}, nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	for i, r := range f.Resources {
		switch r.Category {
		case model.CategorySuicide, model.CategoryAbuse, model.CategoryMentalHealth,
			model.CategoryCrisis, model.CategoryLocal:
		default:
			return RuleSet{}, nil, fmt.Errorf("resource %d (%q): unknown category %q", i, r.Title, r.Category)
		}
	}
	return f.RuleSet, f.Resources, nil
}

// Validate checks structural invariants: every tier non-empty, tiers
// disjoint, weights positive and thresholds strictly descending.
func (r RuleSet) Validate() error {
	if len(r.CrisisKeywords) == 0 || len(r.HighRiskKeywords) == 0 || len(r.SensitiveKeywords) == 0 {
		return fmt.Errorf("all three keyword tiers must be non-empty")
	}
	seen := make(map[string]string, len(r.CrisisKeywords)+len(r.HighRiskKeywords)+len(r.SensitiveKeywords))
	tiers := []struct {
		name string
		kws  []string
	}{
		{"crisis", r.CrisisKeywords},
		{"high_risk", r.HighRiskKeywords},
		{"sensitive", r.SensitiveKeywords},
	}
	for _, tier := range tiers {
		for _, kw := range tier.kws {
			if kw == "" {
				return fmt.Errorf("tier %s contains an empty keyword", tier.name)
			}
			if prev, dup := seen[kw]; dup {
				return fmt.Errorf("keyword %q appears in both %s and %s tiers", kw, prev, tier.name)
			}
			seen[kw] = tier.name
		}
	}
	if r.CrisisWeight <= 0 || r.HighRiskWeight <= 0 || r.SensitiveWeight <= 0 {
		return fmt.Errorf("tier weights must be positive")
	}
	if r.MultiCrisisBonus < 0 || r.FinalityBonus < 0 || r.HopelessnessBonus < 0 || r.UrgencyBonus < 0 {
		return fmt.Errorf("pattern bonuses must not be negative")
	}
	if !(r.CrisisThreshold > r.HighRiskThreshold && r.HighRiskThreshold > r.SensitiveThreshold && r.SensitiveThreshold > 0) {
		return fmt.Errorf("thresholds must satisfy crisis > high_risk > sensitive > 0")
	}
	return nil
}
