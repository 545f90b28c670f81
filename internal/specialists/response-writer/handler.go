// internal/specialists/response-writer/handler.go
package responsewriter

import (
	"context"
	"fmt"
	"strings"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/finance"
	"housing-advisor/internal/models"
)

// Handler is the Writer specialist: it turns whatever signals the turn
// produced into a user-facing narrative with the financial summary. It also
// serves as the best-effort fallback when no other category was planned,
// in which case it summarizes the accumulated context.
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"specialist": string(models.CategoryWriter)}),
	}
}

func (h *Handler) Category() models.Category {
	return models.CategoryWriter
}

func (h *Handler) Run(_ context.Context, req *models.SpecialistRequest) (models.SpecialistResult, error) {
	if req == nil {
		return models.SpecialistResult{}, errors.NewUnitInvalidInputError(string(models.CategoryWriter), "request cannot be nil")
	}

	var sections []string

	afford := h.affordabilitySection(&req.Context.Profile, &sections)
	h.grantSection(req, &sections)
	h.recommendationSection(req, &sections)

	if len(sections) == 0 {
		sections = append(sections, h.contextSummary(&req.Context))
	}

	narrative := strings.Join(sections, "\n\n")

	h.logger.Info("narrative composed", map[string]interface{}{
		"session_id": req.Context.SessionID,
		"sections":   len(sections),
	})

	confidence := 0.8
	if len(sections) == 1 && afford == nil {
		confidence = 0.4
	}

	return models.NewResult(models.CategoryWriter, models.WriterPayload{
		Narrative:     narrative,
		Affordability: afford,
	}, confidence, fmt.Sprintf("composed %d sections", len(sections)))
}

func (h *Handler) affordabilitySection(p *models.Profile, sections *[]string) *models.AffordabilitySummary {
	income, ok := p.Field("monthly_income")
	if !ok {
		return nil
	}
	debt, _ := p.Field("monthly_debt")
	deposit, _ := p.Field("deposit")

	calc, err := finance.CalculateAffordability(income, debt, deposit)
	if err != nil {
		if err == finance.ErrDebtExceedsTDSR {
			*sections = append(*sections, "Your current debt obligations exceed the Total Debt Servicing Ratio limit. Reducing monthly debt should come before a purchase.")
		}
		return nil
	}

	*sections = append(*sections, fmt.Sprintf(
		"Based on a monthly income of $%.0f you can sustain a repayment of about $%.0f, supporting a property price up to $%.0f. Plan for a deposit of around $%.0f and an emergency fund of $%.0f.",
		income, calc.MaxMonthlyRepayment, calc.MaxPropertyPrice,
		calc.RecommendedDeposit, finance.EmergencyFund(calc.MaxMonthlyRepayment),
	))

	return &models.AffordabilitySummary{
		MaxAffordablePrice:    calc.MaxPropertyPrice,
		MaxMonthlyRepayment:   calc.MaxMonthlyRepayment,
		MaxLoan:               calc.MaxLoan,
		RecommendedBudget:     calc.MaxPropertyPrice,
		IncomeCeilingExceeded: !calc.HDBEligible,
	}
}

func (h *Handler) grantSection(req *models.SpecialistRequest, sections *[]string) {
	res, ok := req.Prereq(models.CategoryGrant)
	if !ok || res.Degraded {
		return
	}
	var payload models.GrantPayload
	if err := res.DecodePayload(&payload); err != nil {
		return
	}

	var eligible []string
	for _, f := range payload.Findings {
		if f.Eligible {
			eligible = append(eligible, fmt.Sprintf("%s ($%.0f)", f.Scheme, f.Amount))
		}
	}
	if len(eligible) == 0 {
		*sections = append(*sections, "No housing grants match your profile yet; completing your profile may unlock schemes.")
		return
	}
	*sections = append(*sections, fmt.Sprintf(
		"You qualify for %s, a total of $%.0f in grants.",
		strings.Join(eligible, ", "), payload.TotalEligibleAmount(),
	))
}

func (h *Handler) recommendationSection(req *models.SpecialistRequest, sections *[]string) {
	res, ok := req.Prereq(models.CategoryDecision)
	if !ok || res.Degraded {
		return
	}
	var rec models.Recommendation
	if err := res.DecodePayload(&rec); err != nil {
		return
	}
	top, ok := rec.Top()
	if !ok {
		return
	}

	section := fmt.Sprintf(
		"Top recommendation: %s at $%.0f (score %.2f).",
		top.CandidateID, top.Price, top.Score,
	)
	if rec.RiskAssessment != nil {
		section += fmt.Sprintf(" Financial risk is assessed as %s.", rec.RiskAssessment.Level)
	}
	if len(rec.NextSteps) > 0 {
		section += " Suggested next steps: " + strings.Join(rec.NextSteps[:min(3, len(rec.NextSteps))], "; ") + "."
	}
	*sections = append(*sections, section)
}

// contextSummary is the best-effort fallback when the turn produced no
// other signals.
func (h *Handler) contextSummary(uc *models.UserContext) string {
	var b strings.Builder
	b.WriteString("Here is where we are in your housing journey.")

	if uc.Profile.Citizenship != "" {
		fmt.Fprintf(&b, " You are a %s.", uc.Profile.Citizenship)
	}
	if income, ok := uc.Profile.Field("monthly_income"); ok {
		fmt.Fprintf(&b, " Monthly income on record: $%.0f.", income)
	}
	if len(uc.Profile.PreferredAreas) > 0 {
		fmt.Fprintf(&b, " Preferred areas: %s.", strings.Join(uc.Profile.PreferredAreas, ", "))
	}
	if missing := uc.Profile.MissingFields(); len(missing) > 0 {
		fmt.Fprintf(&b, " To advise further I still need: %s.", strings.Join(missing, ", "))
	}
	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
