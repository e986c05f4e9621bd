package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewQueueDeclaresPriorityRange(t *testing.T) {
	// Publisher and consumer share this declaration; per-message priority only
	// works when the queue itself advertises a maximum.
	max, ok := ReviewQueueArgs["x-max-priority"]
	require.True(t, ok)
	assert.Equal(t, int32(10), max)
}

func TestReviewRequiredEventCarriesNoStudentContent(t *testing.T) {
	ev := ReviewRequiredEvent{
		SubmissionID:  "abc",
		SchoolID:      10,
		SafetyLevel:   "CRISIS",
		Urgency:       "critical",
		TimeSensitive: true,
		SignalCount:   2,
		HeldAt:        "2026-08-29T00:00:00Z",
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.NotContains(t, raw, "text")
	assert.NotContains(t, raw, "author_id")
	assert.Equal(t, "abc", raw["submission_id"])
	assert.Equal(t, true, raw["time_sensitive"])
}
