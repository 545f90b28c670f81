// internal/specialists/property-search/handler.go
package propertysearch

import (
	"context"
	"fmt"
	"strings"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"
)

// Handler is the Property specialist: it turns the profile and query into
// search criteria and fetches matching listings.
type Handler struct {
	config *Config
	search ListingSearch
	logger logger.Logger
}

func NewHandler(config *Config, search ListingSearch, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		search: search,
		logger: log.WithFields(map[string]interface{}{"specialist": string(models.CategoryProperty)}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryProperty
}

func (h *Handler) Run(ctx context.Context, req *models.SpecialistRequest) (models.SpecialistResult, error) {
	if req == nil {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryProperty), "request cannot be nil")
	}

	criteria := h.buildCriteria(req)

	listings, err := h.search.Search(ctx, criteria)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.SpecialistResult{}, errors.NewUnitTimeoutError(string(models.CategoryProperty))
		}
		return models.SpecialistResult{}, errors.NewUnitDataUnavailableError(string(models.CategoryProperty), err)
	}

	h.logger.Info("listing search completed", map[string]interface{}{
		"session_id": req.Context.SessionID,
		"found":      len(listings),
	})

	confidence := 0.9
	if len(listings) == 0 {
		confidence = 0.3
	}

	return models.NewResult(models.CategoryProperty, models.PropertyPayload{
		Listings: listings,
		Total:    len(listings),
	}, confidence, h.describeCriteria(criteria, len(listings)))
}

func (h *Handler) buildCriteria(req *models.SpecialistRequest) Criteria {
	p := &req.Context.Profile

	criteria := Criteria{
		FlatType: p.FlatType,
		Towns:    lowerAll(p.PreferredAreas),
		Limit:    h.config.MaxResults,
	}
	if budget, ok := p.Field("budget"); ok {
		criteria.MaxPrice = budget
	}
	if rooms, ok := p.Field("rooms"); ok {
		criteria.Rooms = int(rooms)
	}
	return criteria
}

func (h *Handler) describeCriteria(c Criteria, found int) string {
	var parts []string
	if c.MaxPrice > 0 {
		parts = append(parts, fmt.Sprintf("price up to %.0f", c.MaxPrice))
	}
	if len(c.Towns) > 0 {
		parts = append(parts, "towns "+strings.Join(c.Towns, "/"))
	}
	if c.FlatType != "" {
		parts = append(parts, "type "+c.FlatType)
	}
	if c.Rooms > 0 {
		parts = append(parts, fmt.Sprintf("%d rooms", c.Rooms))
	}
	if len(parts) == 0 {
		parts = append(parts, "no constraints")
	}
	return fmt.Sprintf("%d listings matched (%s)", found, strings.Join(parts, ", "))
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
