package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesAreValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateRejectsDuplicateAcrossTiers(t *testing.T) {
	rs := Default()
	rs.SensitiveKeywords = append(rs.SensitiveKeywords, rs.CrisisKeywords[0])
	err := rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appears in both")
}

func TestValidateRejectsEmptyTier(t *testing.T) {
	rs := Default()
	rs.HighRiskKeywords = nil
	assert.Error(t, rs.Validate())
}

func TestValidateRejectsEmptyKeyword(t *testing.T) {
	rs := Default()
	rs.SensitiveKeywords = append(rs.SensitiveKeywords, "")
	assert.Error(t, rs.Validate())
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	rs := Default()
	rs.HighRiskThreshold = rs.CrisisThreshold
	assert.Error(t, rs.Validate())

	rs = Default()
	rs.SensitiveThreshold = 0
	assert.Error(t, rs.Validate())
}

func TestValidateRejectsNonPositiveWeights(t *testing.T) {
	rs := Default()
	rs.SensitiveWeight = 0
	assert.Error(t, rs.Validate())
}

func TestLoadShippedRulesFile(t *testing.T) {
	rs, resources, err := Load("../../configs/safety_rules.toml")
	require.NoError(t, err)
	assert.NoError(t, rs.Validate())
	assert.NotEmpty(t, rs.Version)
	require.NotEmpty(t, resources)
	for _, r := range resources {
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Category)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load("does-not-exist.toml")
	assert.Error(t, err)
}
