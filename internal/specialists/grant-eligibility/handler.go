// internal/specialists/grant-eligibility/handler.go
package granteligibility

import (
	"context"
	"fmt"
	"strings"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"
)

// Handler is the Grant specialist: it evaluates the codified scheme rules
// against the profile and enriches the rationale with knowledge-base
// documents when the lookup capability is reachable.
type Handler struct {
	config    *Config
	knowledge KnowledgeSearch
	logger    logger.Logger
}

func NewHandler(config *Config, knowledge KnowledgeSearch, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		knowledge: knowledge,
		logger:    log.WithFields(map[string]interface{}{"specialist": string(models.CategoryGrant)}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryGrant
}

func (h *Handler) Run(ctx context.Context, req *models.SpecialistRequest) (models.SpecialistResult, error) {
	if req == nil {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryGrant), "request cannot be nil")
	}

	findings := evaluateSchemes(&req.Context.Profile)
	payload := models.GrantPayload{Findings: findings}
	payload.TotalAmount = payload.TotalEligibleAmount()

	// Incomplete profiles lower confidence: the findings may change once
	// income and citizenship are known.
	confidence := 0.5 + 0.5*req.Context.Profile.CompletionScore()

	rationale := summarizeFindings(findings)
	if h.knowledge != nil {
		if docs, err := h.knowledge.Lookup(ctx, req.Query); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return models.SpecialistResult{}, errors.NewUnitTimeoutError(string(models.CategoryGrant))
			}
			h.logger.Warn("knowledge lookup failed, continuing with rule findings", map[string]interface{}{
				"session_id": req.Context.SessionID,
				"error":      err.Error(),
			})
		} else if len(docs) > 0 {
			rationale += "; sources: " + joinSchemes(docs)
		}
	}

	h.logger.Info("grant evaluation completed", map[string]interface{}{
		"session_id":   req.Context.SessionID,
		"total_amount": payload.TotalAmount,
	})

	return models.NewResult(models.CategoryGrant, payload, confidence, rationale)
}

func summarizeFindings(findings []models.EligibilityFinding) string {
	eligible := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Eligible {
			eligible = append(eligible, fmt.Sprintf("%s (%.0f)", f.Scheme, f.Amount))
		}
	}
	if len(eligible) == 0 {
		return "No eligible grants with the current profile"
	}
	return "Eligible: " + strings.Join(eligible, ", ")
}

func joinSchemes(docs []SchemeDoc) string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Scheme)
	}
	return strings.Join(names, ", ")
}
