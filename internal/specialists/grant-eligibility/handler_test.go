// internal/specialists/grant-eligibility/handler_test.go
package granteligibility

import (
	"context"
	"errors"
	"testing"

	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeKnowledge struct {
	docs []SchemeDoc
	err  error
}

func (f *fakeKnowledge) Lookup(context.Context, string) ([]SchemeDoc, error) {
	return f.docs, f.err
}

func requestWithProfile(citizenship string, income float64) *models.SpecialistRequest {
	uc := models.NewUserContext("sess-1")
	uc.Profile.Citizenship = citizenship
	if income > 0 {
		uc.Profile.SetField("monthly_income", income)
	}
	return &models.SpecialistRequest{Query: "what grants can I get?", Context: *uc}
}

func findingFor(t *testing.T, findings []models.EligibilityFinding, scheme string) models.EligibilityFinding {
	t.Helper()
	for _, f := range findings {
		if f.Scheme == scheme {
			return f
		}
	}
	t.Fatalf("scheme %s not evaluated", scheme)
	return models.EligibilityFinding{}
}

// ==========================
// Rule Tests
// ==========================

func TestEvaluateEHG_Tiers(t *testing.T) {
	tests := []struct {
		name       string
		income     float64
		wantAmount float64
		wantOK     bool
	}{
		{"lowest tier", 1400, 120000, true},
		{"tier boundary inclusive", 1500, 120000, true},
		{"next tier", 1501, 115000, true},
		{"mid tier", 5000, 85000, true},
		{"top tier", 9000, 45000, true},
		{"over ceiling", 9001, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := evaluateEHG(true, true, tt.income)
			assert.Equal(t, tt.wantOK, f.Eligible)
			assert.Equal(t, tt.wantAmount, f.Amount)
		})
	}
}

func TestEvaluateSchemes_NonCitizen(t *testing.T) {
	p := models.Profile{Citizenship: "Permanent Resident"}
	p.SetField("monthly_income", 4000)

	findings := evaluateSchemes(&p)
	for _, f := range findings {
		assert.False(t, f.Eligible, f.Scheme)
	}
}

func TestEvaluateFamilyGrant_RoomDependentAmount(t *testing.T) {
	p := models.Profile{Citizenship: "Singapore Citizen"}
	p.SetField("monthly_income", 6000)
	p.SetField("rooms", 4)
	f := findingFor(t, evaluateSchemes(&p), SchemeFamily)
	assert.True(t, f.Eligible)
	assert.Equal(t, 80000.0, f.Amount)

	p.SetField("rooms", 5)
	f = findingFor(t, evaluateSchemes(&p), SchemeFamily)
	assert.Equal(t, 50000.0, f.Amount)
}

func TestEvaluateProximityGrant(t *testing.T) {
	p := models.Profile{Citizenship: "Singapore Citizen"}
	f := findingFor(t, evaluateSchemes(&p), SchemeProximity)
	assert.False(t, f.Eligible)

	p.SetField("near_parents", 1)
	f = findingFor(t, evaluateSchemes(&p), SchemeProximity)
	assert.True(t, f.Eligible)
	assert.Equal(t, 20000.0, f.Amount)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Run_EligibleProfile(t *testing.T) {
	h := NewHandler(LoadConfig(), &fakeKnowledge{docs: []SchemeDoc{
		{Scheme: "Enhanced CPF Housing Grant", Summary: "Income-tiered grant"},
	}}, logger.NewNoOpLogger())

	res, err := h.Run(context.Background(), requestWithProfile("Singapore Citizen", 5000))
	require.NoError(t, err)
	assert.Equal(t, models.CategoryGrant, res.Category)

	var payload models.GrantPayload
	require.NoError(t, res.DecodePayload(&payload))
	require.Len(t, payload.Findings, 3)

	ehg := findingFor(t, payload.Findings, SchemeEnhancedCPF)
	assert.True(t, ehg.Eligible)
	assert.Equal(t, 85000.0, ehg.Amount)
	// EHG 85000 + Family Grant 80000.
	assert.Equal(t, 165000.0, payload.TotalAmount)
	assert.Contains(t, res.Rationale, "sources: Enhanced CPF Housing Grant")
}

func TestHandler_Run_KnowledgeFailureIsNotFatal(t *testing.T) {
	h := NewHandler(LoadConfig(), &fakeKnowledge{err: errors.New("index down")}, logger.NewNoOpLogger())

	res, err := h.Run(context.Background(), requestWithProfile("Singapore Citizen", 5000))
	require.NoError(t, err, "findings come from rules, the lookup only enriches")
	assert.Contains(t, res.Rationale, "Eligible:")
}

func TestHandler_Run_EmptyProfileLowConfidence(t *testing.T) {
	h := NewHandler(LoadConfig(), nil, logger.NewNoOpLogger())

	res, err := h.Run(context.Background(), requestWithProfile("", 0))
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.Confidence)

	var payload models.GrantPayload
	require.NoError(t, res.DecodePayload(&payload))
	assert.Zero(t, payload.TotalAmount)
	assert.Contains(t, res.Rationale, "No eligible grants")
}
