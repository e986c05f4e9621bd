// Package catalog serves the static emergency resource list. Resources are
// loaded once at startup from the rules file and are read-only afterwards, so
// selection is safe from any number of concurrent requests.
package catalog

import (
	"sort"

	"github.com/safehaven/peer-support-core/internal/model"
	"github.com/safehaven/peer-support-core/internal/rules"
)

// maxResources caps how many resources accompany a single classification.
const maxResources = 3

// Catalog selects emergency resources matching a classification outcome.
type Catalog struct {
	resources []model.EmergencyResource
	suicide   map[string]bool
	abuse     map[string]bool
}

// New builds a Catalog from the resource list and the indicator lists of the
// rule set. Both inputs are treated as immutable after construction.
func New(resources []model.EmergencyResource, rs rules.RuleSet) *Catalog {
	c := &Catalog{
		resources: resources,
		suicide:   make(map[string]bool, len(rs.SuicideIndicators)),
		abuse:     make(map[string]bool, len(rs.AbuseIndicators)),
	}
	for _, kw := range rs.SuicideIndicators {
		c.suicide[kw] = true
	}
	for _, kw := range rs.AbuseIndicators {
		c.abuse[kw] = true
	}
	return c
}

// Select returns up to three resources for a non-SAFE classification.
//
// The matched signals steer category selection: suicide-indicating signals
// pull in suicide/crisis resources, abuse-indicating signals pull in
// abuse/crisis resources, and anything else defaults to mental_health/crisis.
// For CRISIS-level results only priority resources are offered, sorted
// priority-first. SAFE classifications receive no resources.
func (c *Catalog) Select(level model.SafetyLevel, signals []string) []model.EmergencyResource {
	if level == model.LevelSafe {
		return nil
	}

	wanted := map[model.ResourceCategory]bool{model.CategoryCrisis: true}
	matchedIndicator := false
	for _, s := range signals {
		if c.suicide[s] {
			wanted[model.CategorySuicide] = true
			matchedIndicator = true
		}
		if c.abuse[s] {
			wanted[model.CategoryAbuse] = true
			matchedIndicator = true
		}
	}
	if !matchedIndicator {
		wanted[model.CategoryMentalHealth] = true
	}

	out := make([]model.EmergencyResource, 0, maxResources)
	for _, r := range c.resources {
		if !wanted[r.Category] {
			continue
		}
		if level == model.LevelCrisis && !r.IsPriority {
			continue
		}
		out = append(out, r)
	}

	// Priority entries first; SliceStable keeps the catalog's file order
	// within each group so selection stays deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsPriority && !out[j].IsPriority
	})

	if len(out) > maxResources {
		out = out[:maxResources]
	}
	return out
}

// All returns the full catalog, used by operational endpoints.
func (c *Catalog) All() []model.EmergencyResource {
	return c.resources
}
