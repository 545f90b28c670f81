// internal/specialists/listing-filter/handler_test.go
package listingfilter

import (
	"context"
	"testing"

	apperrors "housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler() *Handler {
	return NewHandler(LoadConfig(), logger.NewNoOpLogger())
}

func requestWithListings(t *testing.T, listings []models.Listing, mutate func(*models.UserContext)) *models.SpecialistRequest {
	t.Helper()
	uc := models.NewUserContext("sess-1")
	if mutate != nil {
		mutate(uc)
	}

	property, err := models.NewResult(models.CategoryProperty, models.PropertyPayload{
		Listings: listings,
		Total:    len(listings),
	}, 0.9, "")
	require.NoError(t, err)

	return &models.SpecialistRequest{
		Query:   "which of these fit me?",
		Context: *uc,
		Prereqs: map[models.Category]models.SpecialistResult{
			models.CategoryProperty: property,
		},
	}
}

func decodeFilter(t *testing.T, res models.SpecialistResult) models.FilterPayload {
	t.Helper()
	var payload models.FilterPayload
	require.NoError(t, res.DecodePayload(&payload))
	return payload
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Run_FiltersByBudgetTypeAndRooms(t *testing.T) {
	listings := []models.Listing{
		{ID: "L1", Price: 450000, Town: "tampines", FlatType: "HDB", Rooms: 4},
		{ID: "L2", Price: 650000, Town: "tampines", FlatType: "HDB", Rooms: 4},  // over budget
		{ID: "L3", Price: 480000, Town: "punggol", FlatType: "Private", Rooms: 4}, // wrong type
		{ID: "L4", Price: 400000, Town: "bedok", FlatType: "HDB", Rooms: 3},       // wrong rooms
	}
	req := requestWithListings(t, listings, func(uc *models.UserContext) {
		uc.Profile.FlatType = "HDB"
		uc.Profile.SetField("budget", 500000)
		uc.Profile.SetField("rooms", 4)
	})

	res, err := newTestHandler().Run(context.Background(), req)
	require.NoError(t, err)

	payload := decodeFilter(t, res)
	require.Len(t, payload.Listings, 1)
	assert.Equal(t, "L1", payload.Listings[0].ID)
	assert.Equal(t, 3, payload.Removed)
}

func TestHandler_Run_RanksByPriceAndLocation(t *testing.T) {
	listings := []models.Listing{
		{ID: "cheap-far", Price: 400000, Town: "yishun", FlatType: "HDB"},
		{ID: "pricey-near", Price: 480000, Town: "tampines", FlatType: "HDB"},
		{ID: "mid-near", Price: 440000, Town: "tampines", FlatType: "HDB"},
	}
	req := requestWithListings(t, listings, func(uc *models.UserContext) {
		uc.Profile.PreferredAreas = []string{"tampines"}
	})

	res, err := newTestHandler().Run(context.Background(), req)
	require.NoError(t, err)

	payload := decodeFilter(t, res)
	require.Len(t, payload.Listings, 3)
	// mid-near: price 0.5*0.6 + location 1.0*0.4 = 0.70 beats
	// cheap-far: 1.0*0.6 + 0.2*0.4 = 0.68 and pricey-near: 0 + 0.4 = 0.40.
	assert.Equal(t, "mid-near", payload.Listings[0].ID)
	assert.Equal(t, "cheap-far", payload.Listings[1].ID)
	assert.Equal(t, "pricey-near", payload.Listings[2].ID)

	assert.Equal(t, 1.0, payload.LocationMatch["mid-near"])
	assert.Equal(t, 0.2, payload.LocationMatch["cheap-far"])
}

func TestHandler_Run_NoPreferredAreasNeutralMatch(t *testing.T) {
	listings := []models.Listing{{ID: "L1", Price: 400000, Town: "bedok"}}
	req := requestWithListings(t, listings, nil)

	res, err := newTestHandler().Run(context.Background(), req)
	require.NoError(t, err)
	payload := decodeFilter(t, res)
	assert.Equal(t, 0.5, payload.LocationMatch["L1"])
}

func TestHandler_Run_DegradedPropertyYieldsEmptyResult(t *testing.T) {
	uc := models.NewUserContext("sess-1")
	req := &models.SpecialistRequest{
		Context: *uc,
		Prereqs: map[models.Category]models.SpecialistResult{
			models.CategoryProperty: models.NewDegradedResult(models.CategoryProperty, "search timed out"),
		},
	}

	res, err := newTestHandler().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.2, res.Confidence)

	payload := decodeFilter(t, res)
	assert.Empty(t, payload.Listings)
}

func TestHandler_Run_MissingPropertyPrereq(t *testing.T) {
	uc := models.NewUserContext("sess-1")
	req := &models.SpecialistRequest{Context: *uc}

	_, err := newTestHandler().Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnitInvalidInput, apperrors.CodeOf(err))
}
