// internal/models/context_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// 1. Journey Stage Machine
// ==========================

func TestJourneyStage_Ordering(t *testing.T) {
	ordered := []JourneyStage{
		StageDiscovery, StageQualification, StageSearch,
		StageEvaluation, StageDecision, StageClosed,
	}
	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i-1].Before(ordered[i]), "%s < %s", ordered[i-1], ordered[i])
	}
}

func TestStageForCategories(t *testing.T) {
	tests := []struct {
		name       string
		categories []Category
		want       JourneyStage
	}{
		{"none", nil, StageDiscovery},
		{"grant only", []Category{CategoryGrant}, StageQualification},
		{"property outranks grant", []Category{CategoryGrant, CategoryProperty}, StageSearch},
		{"decision outranks all", []Category{CategoryProperty, CategoryFilter, CategoryDecision}, StageDecision},
		{"writer implies nothing", []Category{CategoryWriter}, StageDiscovery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StageForCategories(tt.categories))
		})
	}
}

func TestAdvanceStage_NeverBackward(t *testing.T) {
	uc := NewUserContext("s1")
	uc.AdvanceStage(StageEvaluation)
	uc.AdvanceStage(StageQualification)
	assert.Equal(t, StageEvaluation, uc.Stage)

	uc.AdvanceStage(StageDecision)
	assert.Equal(t, StageDecision, uc.Stage)
}

// ==========================
// 2. Context Lifecycle
// ==========================

func TestReset_KeepsProfileClearsProgress(t *testing.T) {
	uc := NewUserContext("s1")
	uc.Profile.Citizenship = "Singapore Citizen"
	uc.Profile.SetField("monthly_income", 6000)
	uc.AdvanceStage(StageDecision)
	uc.Turns = 5
	res, err := NewResult(CategoryProperty, map[string]string{}, 0.9, "ok")
	require.NoError(t, err)
	uc.MergeResult(res)
	uc.RecordInteraction(Interaction{TurnID: "t1", Stage: uc.Stage, Timestamp: time.Now()}, 20)

	uc.Reset()

	assert.Equal(t, StageDiscovery, uc.Stage)
	assert.Empty(t, uc.Results)
	assert.Empty(t, uc.History)
	assert.Equal(t, 0, uc.Turns)
	assert.Equal(t, "Singapore Citizen", uc.Profile.Citizenship)
	income, ok := uc.Profile.Field("monthly_income")
	require.True(t, ok)
	assert.Equal(t, 6000.0, income)
}

func TestRecordInteraction_TrimsToLimit(t *testing.T) {
	uc := NewUserContext("s1")
	for i := 0; i < 25; i++ {
		uc.RecordInteraction(Interaction{TurnID: string(rune('a' + i))}, 20)
	}
	require.Len(t, uc.History, 20)
	assert.Equal(t, string(rune('a'+5)), uc.History[0].TurnID, "oldest entries are dropped first")
}

func TestMergeResult_ReplacesSameCategory(t *testing.T) {
	uc := NewUserContext("s1")
	first, err := NewResult(CategoryGrant, map[string]float64{"total": 1}, 0.5, "v1")
	require.NoError(t, err)
	second, err := NewResult(CategoryGrant, map[string]float64{"total": 2}, 0.9, "v2")
	require.NoError(t, err)

	uc.MergeResult(first)
	uc.MergeResult(second)

	require.True(t, uc.HasResult(CategoryGrant))
	assert.Equal(t, "v2", uc.Results[CategoryGrant].Rationale)
}
