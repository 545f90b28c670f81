// internal/specialists/decision-scoring/handler.go
package decisionscoring

import (
	"context"
	"fmt"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/decision"
	"housing-advisor/internal/finance"
	"housing-advisor/internal/models"
)

// Handler is the Decision specialist: it assembles candidates from the
// filtered listings and the grant findings, derives the affordability
// picture from the profile, and hands everything to the ranking engine.
type Handler struct {
	config *Config
	engine *decision.Engine
	logger logger.Logger
}

func NewHandler(config *Config, engine *decision.Engine, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		engine: engine,
		logger: log.WithFields(map[string]interface{}{"specialist": string(models.CategoryDecision)}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryDecision
}

func (h *Handler) Run(_ context.Context, req *models.SpecialistRequest) (models.SpecialistResult, error) {
	if req == nil {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryDecision), "request cannot be nil")
	}

	filtered, ok := req.Prereq(models.CategoryFilter)
	if !ok {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryDecision), "filter result missing from plan")
	}

	var filterPayload models.FilterPayload
	if !filtered.Degraded {
		if err := filtered.DecodePayload(&filterPayload); err != nil {
			return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryDecision), err.Error())
		}
	}

	eligibility, grantTotal := h.grantSignals(req)
	afford := h.affordability(&req.Context.Profile)
	candidates := h.buildCandidates(filterPayload, grantTotal)

	rec := h.engine.Rank(candidates, eligibility, afford, req.Weights)
	h.annotateTopCandidate(&rec, filterPayload.Listings, &req.Context.Profile, eligibility)

	h.logger.Info("candidates ranked", map[string]interface{}{
		"session_id": req.Context.SessionID,
		"candidates": len(rec.Candidates),
	})

	confidence := 0.9
	if afford == nil {
		confidence = 0.5
	}
	if len(rec.Candidates) == 0 {
		confidence = 0.2
	}

	return models.NewResult(models.CategoryDecision, rec, confidence,
		fmt.Sprintf("ranked %d candidates across affordability, grant, location and risk", len(rec.Candidates)))
}

func (h *Handler) grantSignals(req *models.SpecialistRequest) ([]models.EligibilityFinding, float64) {
	grants, ok := req.Prereq(models.CategoryGrant)
	if !ok || grants.Degraded {
		return nil, 0
	}
	var payload models.GrantPayload
	if err := grants.DecodePayload(&payload); err != nil {
		h.logger.Warn("grant payload undecodable, scoring without grant signal", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, 0
	}
	return payload.Findings, payload.TotalEligibleAmount()
}

func (h *Handler) affordability(p *models.Profile) *models.AffordabilitySummary {
	income, ok := p.Field("monthly_income")
	if !ok {
		return nil
	}
	debt, _ := p.Field("monthly_debt")
	deposit, _ := p.Field("deposit")

	calc, err := finance.CalculateAffordability(income, debt, deposit)
	if err != nil {
		h.logger.Warn("affordability not computable, scoring without it", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return &models.AffordabilitySummary{
		MaxAffordablePrice:    calc.MaxPropertyPrice,
		MaxMonthlyRepayment:   calc.MaxMonthlyRepayment,
		MaxLoan:               calc.MaxLoan,
		RecommendedBudget:     calc.MaxPropertyPrice,
		IncomeCeilingExceeded: !calc.HDBEligible,
	}
}

func (h *Handler) buildCandidates(filtered models.FilterPayload, grantTotal float64) []models.Candidate {
	candidates := make([]models.Candidate, 0, len(filtered.Listings))
	for _, l := range filtered.Listings {
		c := models.Candidate{
			ID:          l.ID,
			Price:       l.Price,
			AgeYears:    l.AgeYears,
			GrantAmount: grantTotal,
		}
		if match, ok := filtered.LocationMatch[l.ID]; ok {
			m := match
			c.LocationMatch = &m
		}
		risk := riskFor(l)
		c.Risk = &risk
		candidates = append(candidates, c)
	}
	return candidates
}

// riskFor derives a normalized risk signal from the listing's age profile.
func riskFor(l models.Listing) float64 {
	risk := 0.1
	if l.AgeYears > 30 {
		risk += 0.3
	}
	if l.FlatType == "HDB" && l.AgeYears > 60 {
		risk += 0.3
	}
	if risk > 1 {
		risk = 1
	}
	return risk
}

// annotateTopCandidate attaches the risk assessment and next steps for the
// highest-ranked candidate.
func (h *Handler) annotateTopCandidate(
	rec *models.Recommendation,
	listings []models.Listing,
	p *models.Profile,
	eligibility []models.EligibilityFinding,
) {
	top, ok := rec.Top()
	if !ok {
		return
	}

	var topListing models.Listing
	for _, l := range listings {
		if l.ID == top.CandidateID {
			topListing = l
			break
		}
	}

	income, _ := p.Field("monthly_income")
	deposit, _ := p.Field("deposit")

	hasGrants := false
	grantTotal := 0.0
	for _, f := range eligibility {
		if f.Eligible {
			hasGrants = true
			grantTotal += f.Amount
		}
	}

	principal := top.Price - grantTotal - deposit
	var repayment float64
	if principal > 0 {
		if loan, err := finance.CalculateLoanRepayment(principal, h.config.LoanRatePercent, h.config.LoanTermYears); err == nil {
			repayment = loan.MonthlyPayment
		}
	}

	candidate := models.Candidate{ID: top.CandidateID, Price: top.Price, AgeYears: topListing.AgeYears}
	rec.RiskAssessment = decision.AssessRisk(candidate, topListing.FlatType, repayment, income)
	rec.NextSteps = decision.SuggestNextSteps(hasGrants, topListing.FlatType, repayment, income)
}
