// internal/specialists/listing-filter/handler.go
package listingfilter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"
)

// Handler is the Filter specialist: it narrows the Property unit's listings
// to the ones matching the profile's constraints and ranks the survivors by
// price competitiveness and location match.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"specialist": string(models.CategoryFilter)}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryFilter
}

func (h *Handler) Run(_ context.Context, req *models.SpecialistRequest) (models.SpecialistResult, error) {
	if req == nil {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryFilter), "request cannot be nil")
	}

	property, ok := req.Prereq(models.CategoryProperty)
	if !ok {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryFilter), "property result missing from plan")
	}

	var listings models.PropertyPayload
	if !property.Degraded {
		if err := property.DecodePayload(&listings); err != nil {
			return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryFilter), err.Error())
		}
	}

	kept, removed := h.filter(listings.Listings, &req.Context.Profile)
	matches := h.locationMatches(kept, req.Context.Profile.PreferredAreas)
	ranked := h.rank(kept, matches)

	if len(ranked) > h.config.MaxResults {
		ranked = ranked[:h.config.MaxResults]
	}

	h.logger.Info("listings filtered", map[string]interface{}{
		"session_id": req.Context.SessionID,
		"kept":       len(ranked),
		"removed":    removed,
	})

	confidence := 0.85
	if len(ranked) == 0 {
		confidence = 0.2
	}

	return models.NewResult(models.CategoryFilter, models.FilterPayload{
		Listings:      ranked,
		LocationMatch: matches,
		Removed:       removed,
	}, confidence, fmt.Sprintf("kept %d of %d listings", len(ranked), len(listings.Listings)))
}

// filter drops listings violating the profile's hard constraints.
func (h *Handler) filter(listings []models.Listing, p *models.Profile) ([]models.Listing, int) {
	budget, hasBudget := p.Field("budget")
	rooms, hasRooms := p.Field("rooms")

	kept := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		switch {
		case hasBudget && l.Price > budget:
		case p.FlatType != "" && l.FlatType != "" && l.FlatType != p.FlatType:
		case hasRooms && l.Rooms != 0 && l.Rooms != int(rooms):
		default:
			kept = append(kept, l)
			continue
		}
	}
	return kept, len(listings) - len(kept)
}

// locationMatches scores each listing's town against the preferred areas.
// With no preference every town scores neutral.
func (h *Handler) locationMatches(listings []models.Listing, areas []string) map[string]float64 {
	matches := make(map[string]float64, len(listings))
	for _, l := range listings {
		if len(areas) == 0 {
			matches[l.ID] = 0.5
			continue
		}
		score := 0.2
		for _, area := range areas {
			if strings.EqualFold(l.Town, area) {
				score = 1.0
				break
			}
		}
		matches[l.ID] = score
	}
	return matches
}

// rank orders listings by weighted price competitiveness and location
// match, deterministically.
func (h *Handler) rank(listings []models.Listing, matches map[string]float64) []models.Listing {
	if len(listings) <= 1 {
		return listings
	}

	minPrice, maxPrice := listings[0].Price, listings[0].Price
	for _, l := range listings[1:] {
		if l.Price < minPrice {
			minPrice = l.Price
		}
		if l.Price > maxPrice {
			maxPrice = l.Price
		}
	}

	scores := make(map[string]float64, len(listings))
	for _, l := range listings {
		priceScore := 1.0
		if maxPrice > minPrice {
			priceScore = 1 - (l.Price-minPrice)/(maxPrice-minPrice)
		}
		scores[l.ID] = h.config.PriceWeight*priceScore + h.config.LocationWeight*matches[l.ID]
	}

	ranked := append([]models.Listing{}, listings...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i].ID] != scores[ranked[j].ID] {
			return scores[ranked[i].ID] > scores[ranked[j].ID]
		}
		if ranked[i].Price != ranked[j].Price {
			return ranked[i].Price < ranked[j].Price
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
