// internal/profile/extract_test.go
package profile

import (
	"testing"

	"housing-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Citizenship(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"singaporean", "I am Singaporean looking for a flat", "Singapore Citizen"},
		{"citizen phrase", "As a Singapore citizen what grants do I get?", "Singapore Citizen"},
		{"pr word", "I'm a PR, can I buy a resale flat?", "Permanent Resident"},
		{"permanent resident", "my wife is a permanent resident", "Permanent Resident"},
		{"foreigner", "I'm a foreigner on an employment pass", "Foreigner"},
		{"none", "show me flats in tampines", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p models.Profile
			Extract(&p, tt.query)
			assert.Equal(t, tt.expected, p.Citizenship)
		})
	}
}

func TestExtract_Income(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected float64
	}{
		{"earning with dollar", "I'm earning $6000 a month", 6000},
		{"income of", "my income of 7,500 sgd", 7500},
		{"k format", "we make 8k per month", 8000},
		{"plain dollar", "household makes $5,500 monthly", 5500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p models.Profile
			updated := Extract(&p, tt.query)
			income, ok := p.Field("monthly_income")
			require.True(t, ok)
			assert.Equal(t, tt.expected, income)
			assert.Contains(t, updated, "monthly_income")
		})
	}
}

func TestExtract_IncomeIgnoresPropertyPrices(t *testing.T) {
	var p models.Profile
	Extract(&p, "is $450,000 a fair price for bedok?")
	_, ok := p.Field("monthly_income")
	assert.False(t, ok, "six figure amounts are prices, not income")
}

func TestExtract_Budget(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected float64
	}{
		{"under k", "looking for something under $500k", 500000},
		{"budget of", "our budget of 650000", 650000},
		{"below", "flats below $480k please", 480000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p models.Profile
			Extract(&p, tt.query)
			budget, ok := p.Field("budget")
			require.True(t, ok)
			assert.Equal(t, tt.expected, budget)
		})
	}
}

func TestExtract_FlatTypeAndRooms(t *testing.T) {
	var p models.Profile
	Extract(&p, "I want a 4-room HDB flat")
	assert.Equal(t, "HDB", p.FlatType)
	rooms, ok := p.Field("rooms")
	require.True(t, ok)
	assert.Equal(t, 4.0, rooms)

	var p2 models.Profile
	Extract(&p2, "maybe an executive condo instead")
	assert.Equal(t, "EC", p2.FlatType)
}

func TestExtract_AreasAccumulate(t *testing.T) {
	p := models.Profile{PreferredAreas: []string{"tampines"}}
	Extract(&p, "what about punggol or sengkang?")
	assert.Equal(t, []string{"tampines", "punggol", "sengkang"}, p.PreferredAreas)

	// Repeating an area must not duplicate it.
	Extract(&p, "still thinking about punggol")
	assert.Len(t, p.PreferredAreas, 3)
}

func TestExtract_Age(t *testing.T) {
	var p models.Profile
	Extract(&p, "I'm 34 and earning $6000")
	age, ok := p.Field("age")
	require.True(t, ok)
	assert.Equal(t, 34.0, age)
}

func TestExtract_CompletionScoreProgresses(t *testing.T) {
	var p models.Profile
	assert.Equal(t, 0.0, p.CompletionScore())

	Extract(&p, "I'm a Singaporean, I'm 30, earning $6000, budget of $500k")
	assert.Equal(t, 1.0, p.CompletionScore())
	assert.Empty(t, p.MissingFields())
}
