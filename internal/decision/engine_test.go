// internal/decision/engine_test.go
package decision

import (
	"testing"

	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEngine() *Engine {
	return NewEngine(nil, logger.NewNoOpLogger())
}

func floatPtr(v float64) *float64 {
	return &v
}

// ==========================
// Weight Resolution Tests
// ==========================

func TestResolveWeights_Defaults(t *testing.T) {
	w := newTestEngine().ResolveWeights(nil)
	assert.Equal(t, 0.40, w[FactorAffordability])
	assert.Equal(t, 0.20, w[FactorGrant])
	assert.Equal(t, 0.25, w[FactorLocation])
	assert.Equal(t, 0.15, w[FactorRisk])
}

func TestResolveWeights_PartialOverrideSumsToOne(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]float64
	}{
		{"single override", map[string]float64{FactorAffordability: 0.6}},
		{"two overrides", map[string]float64{FactorGrant: 0.1, FactorRisk: 0.3}},
		{"override consuming full budget", map[string]float64{FactorAffordability: 1.2}},
		{"all overridden unnormalized", map[string]float64{
			FactorAffordability: 2, FactorGrant: 1, FactorLocation: 1, FactorRisk: 0,
		}},
		{"unrecognized key ignored", map[string]float64{"sentiment": 0.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestEngine().ResolveWeights(tt.overrides)
			var sum float64
			for _, v := range w {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestResolveWeights_OverriddenValueKept(t *testing.T) {
	w := newTestEngine().ResolveWeights(map[string]float64{FactorAffordability: 0.7})
	assert.InDelta(t, 0.7, w[FactorAffordability], 1e-9)
	// Remaining defaults scale by 0.3/0.6.
	assert.InDelta(t, 0.10, w[FactorGrant], 1e-9)
	assert.InDelta(t, 0.125, w[FactorLocation], 1e-9)
	assert.InDelta(t, 0.075, w[FactorRisk], 1e-9)
}

// ==========================
// Ranking Tests
// ==========================

func TestRank_FactorFormula(t *testing.T) {
	engine := newTestEngine()

	rec := engine.Rank(
		[]models.Candidate{{
			ID:            "c-1",
			Price:         500000,
			GrantAmount:   50000,
			LocationMatch: floatPtr(0.8),
			Risk:          floatPtr(0.1),
		}},
		nil,
		&models.AffordabilitySummary{MaxAffordablePrice: 550000},
		nil,
	)
	require.Len(t, rec.Candidates, 1)
	got := rec.Candidates[0]

	// affordability 1 - 500000/550000, grant 50000/500000, location 0.8,
	// risk 1 - 0.1, weighted 0.4/0.2/0.25/0.15.
	assert.InDelta(t, 1.0-500000.0/550000.0, got.Factors.Affordability, 1e-9)
	assert.InDelta(t, 0.1, got.Factors.Grant, 1e-9)
	assert.InDelta(t, 0.8, got.Factors.Location, 1e-9)
	assert.InDelta(t, 0.9, got.Factors.Risk, 1e-9)
	assert.InDelta(t, 0.39136, got.Score, 0.0001)
	assert.NotEmpty(t, got.Rationale)
}

func TestRank_TieBrokenByLowerPrice(t *testing.T) {
	engine := newTestEngine()

	candidates := []models.Candidate{
		{ID: "expensive", Price: 500000, LocationMatch: floatPtr(0.5), Risk: floatPtr(0.2)},
		{ID: "cheaper", Price: 480000, LocationMatch: floatPtr(0.5), Risk: floatPtr(0.2)},
	}
	// No affordability or grant signal: scores depend only on location and
	// risk, which are identical.
	rec := engine.Rank(candidates, nil, nil, nil)

	require.Len(t, rec.Candidates, 2)
	assert.Equal(t, rec.Candidates[0].Score, rec.Candidates[1].Score)
	assert.Equal(t, "cheaper", rec.Candidates[0].CandidateID)
}

func TestRank_TieBrokenByIDWhenPricesEqual(t *testing.T) {
	engine := newTestEngine()

	rec := engine.Rank([]models.Candidate{
		{ID: "bbb", Price: 400000},
		{ID: "aaa", Price: 400000},
	}, nil, nil, nil)

	require.Len(t, rec.Candidates, 2)
	assert.Equal(t, "aaa", rec.Candidates[0].CandidateID)
}

func TestRank_InvariantsOverFullSet(t *testing.T) {
	engine := newTestEngine()

	candidates := []models.Candidate{
		{ID: "a", Price: 350000, GrantAmount: 80000, LocationMatch: floatPtr(1.0), Risk: floatPtr(0.05)},
		{ID: "b", Price: 620000, LocationMatch: floatPtr(0.4)},
		{ID: "c", Price: 480000, GrantAmount: 30000, Risk: floatPtr(0.6)},
		{ID: "d", Price: -100},
		{ID: "e", Price: 510000, LocationMatch: floatPtr(1.7), Risk: floatPtr(-0.4)},
	}
	afford := &models.AffordabilitySummary{MaxAffordablePrice: 500000}

	rec := engine.Rank(candidates, nil, afford, nil)

	require.Len(t, rec.Candidates, len(candidates), "malformed candidates are ranked, not dropped")
	for i, sc := range rec.Candidates {
		assert.GreaterOrEqual(t, sc.Score, 0.0)
		assert.LessOrEqual(t, sc.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, sc.Score, rec.Candidates[i-1].Score, "scores must be non-increasing")
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	engine := newTestEngine()
	candidates := []models.Candidate{
		{ID: "a", Price: 350000, GrantAmount: 80000, LocationMatch: floatPtr(1.0), Risk: floatPtr(0.05)},
		{ID: "b", Price: 620000, LocationMatch: floatPtr(0.4)},
		{ID: "c", Price: 480000, GrantAmount: 30000, Risk: floatPtr(0.6)},
	}
	afford := &models.AffordabilitySummary{MaxAffordablePrice: 500000}

	first := engine.Rank(candidates, nil, afford, nil)
	second := engine.Rank(candidates, nil, afford, nil)
	assert.Equal(t, first, second)
}

func TestRank_MissingFactorsScoreWorstCase(t *testing.T) {
	engine := newTestEngine()

	rec := engine.Rank([]models.Candidate{{ID: "bare", Price: 400000}}, nil, nil, nil)
	require.Len(t, rec.Candidates, 1)
	got := rec.Candidates[0]
	assert.Equal(t, models.FactorScores{}, got.Factors)
	assert.Equal(t, 0.0, got.Score)
}

func TestRank_EligibilityFallbackForGrantAmount(t *testing.T) {
	engine := newTestEngine()

	eligibility := []models.EligibilityFinding{
		{Scheme: "Enhanced CPF Housing Grant", Eligible: true, Amount: 40000},
		{Scheme: "Proximity Housing Grant", Eligible: false, Amount: 20000},
	}
	rec := engine.Rank([]models.Candidate{{ID: "c", Price: 400000}}, eligibility, nil, nil)

	require.Len(t, rec.Candidates, 1)
	assert.InDelta(t, 0.1, rec.Candidates[0].Factors.Grant, 1e-9, "only eligible findings count")
}

func TestRank_GrantBenefitClamped(t *testing.T) {
	engine := newTestEngine()

	rec := engine.Rank([]models.Candidate{
		{ID: "c", Price: 100000, GrantAmount: 250000},
	}, nil, nil, nil)
	assert.Equal(t, 1.0, rec.Candidates[0].Factors.Grant)
}

// ==========================
// Risk Assessment Tests
// ==========================

func TestAssessRisk_Levels(t *testing.T) {
	tests := []struct {
		name      string
		repayment float64
		income    float64
		ageYears  int
		flatType  string
		wantLevel string
		wantFacts int
	}{
		{"low", 1400, 6000, 5, "HDB", "Low", 0},
		{"medium ratio", 1900, 6000, 5, "HDB", "Medium", 1},
		{"high ratio", 2200, 6000, 5, "HDB", "High", 1},
		{"old property", 1400, 6000, 35, "HDB", "Low", 1},
		{"old hdb lease risk", 1400, 6000, 65, "HDB", "Low", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessRisk(models.Candidate{AgeYears: tt.ageYears}, tt.flatType, tt.repayment, tt.income)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Len(t, got.Factors, tt.wantFacts)
			assert.Equal(t, tt.repayment*6, got.EmergencyFund)
		})
	}
}

func TestSuggestNextSteps(t *testing.T) {
	steps := SuggestNextSteps(true, "HDB", 2000, 6000)
	assert.Contains(t, steps, "Apply for eligible housing grants to reduce purchase cost")
	assert.Contains(t, steps, "Check HDB eligibility and application procedures")
	assert.Contains(t, steps, "Consult with a financial advisor on affordability")

	steps = SuggestNextSteps(false, "Private", 1000, 6000)
	assert.NotContains(t, steps, "Apply for eligible housing grants to reduce purchase cost")
	assert.NotContains(t, steps, "Consult with a financial advisor on affordability")
}
