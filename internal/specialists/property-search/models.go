// internal/specialists/property-search/models.go
package propertysearch

import (
	"context"

	"housing-advisor/internal/models"
)

// Criteria narrows a listing search. Zero values mean "no constraint".
type Criteria struct {
	MaxPrice float64  `json:"maxPrice,omitempty"`
	Towns    []string `json:"towns,omitempty"`
	FlatType string   `json:"flatType,omitempty"`
	Rooms    int      `json:"rooms,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// ListingSearch is the injected data-fetch capability. The production
// implementation queries Postgres; tests substitute a fake.
type ListingSearch interface {
	Search(ctx context.Context, criteria Criteria) ([]models.Listing, error)
}
