package model

import "fmt"

// SafetyLevel is the classifier's output tier. The levels form a closed set;
// every switch over a SafetyLevel in this codebase handles all four values so
// a new level cannot slip through a branch unnoticed.
type SafetyLevel int

const (
	LevelSafe SafetyLevel = iota
	LevelSensitive
	LevelHighRisk
	LevelCrisis
)

// String returns the canonical wire/storage form of the level.
func (l SafetyLevel) String() string {
	switch l {
	case LevelSafe:
		return "SAFE"
	case LevelSensitive:
		return "SENSITIVE"
	case LevelHighRisk:
		return "HIGH_RISK"
	case LevelCrisis:
		return "CRISIS"
	}
	return fmt.Sprintf("SafetyLevel(%d)", int(l))
}

// MarshalJSON encodes the level as its string form so API consumers never see
// the internal integer representation.
func (l SafetyLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// ParseSafetyLevel converts a stored string back into a SafetyLevel.
func ParseSafetyLevel(s string) (SafetyLevel, error) {
	switch s {
	case "SAFE":
		return LevelSafe, nil
	case "SENSITIVE":
		return LevelSensitive, nil
	case "HIGH_RISK":
		return LevelHighRisk, nil
	case "CRISIS":
		return LevelCrisis, nil
	}
	return LevelSafe, fmt.Errorf("unknown safety level %q", s)
}

// Urgency mirrors the safety level and is consumed by the notification
// collaborator to prioritize delivery.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyCritical:
		return "critical"
	}
	return fmt.Sprintf("Urgency(%d)", int(u))
}

func (u Urgency) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

// ClassificationResult is the full output of scoring a submission's text.
// It is derived deterministically from the text and is never mutated after
// creation; recomputing produces a fresh value, not an edit.
//
// Fields:
//  Level                – assigned safety tier.
//  Score                – accumulated keyword weight plus pattern bonuses, capped at 100.
//  MatchedSignals       – matched keywords in tier scan order (crisis tier first).
//  Urgency              – mirrors Level (CRISIS→critical ... SAFE→low).
//  RequiresIntervention – true for CRISIS and HIGH_RISK.
//  HideFromPublic       – equals RequiresIntervention; a held entry never reaches the feed.
type ClassificationResult struct {
	Level                SafetyLevel `json:"safety_level"`
	Score                int         `json:"score"`
	MatchedSignals       []string    `json:"matched_signals"`
	Urgency              Urgency     `json:"urgency"`
	RequiresIntervention bool        `json:"requires_intervention"`
	HideFromPublic       bool        `json:"hide_from_public"`
}
