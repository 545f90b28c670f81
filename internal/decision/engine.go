// internal/decision/engine.go
// Package decision implements the multi-criteria ranking engine: weighted
// factor scoring over candidates, deterministic ordering, and a structured
// per-candidate rationale.
package decision

import (
	"fmt"
	"sort"

	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"
)

// Factor names recognized by the weight configuration.
const (
	FactorAffordability = "affordability"
	FactorGrant         = "grant"
	FactorLocation      = "location"
	FactorRisk          = "risk"
)

var factorOrder = []string{FactorAffordability, FactorGrant, FactorLocation, FactorRisk}

// DefaultWeights is the shipped factor weighting.
var DefaultWeights = map[string]float64{
	FactorAffordability: 0.40,
	FactorGrant:         0.20,
	FactorLocation:      0.25,
	FactorRisk:          0.15,
}

// Engine scores and ranks candidates.
type Engine struct {
	defaults map[string]float64
	logger   logger.Logger
}

// NewEngine creates an engine with the given default weights. Unknown or
// missing defaults fall back to DefaultWeights.
func NewEngine(defaults map[string]float64, log logger.Logger) *Engine {
	merged := make(map[string]float64, len(factorOrder))
	for _, f := range factorOrder {
		if w, ok := defaults[f]; ok && w >= 0 {
			merged[f] = w
		} else {
			merged[f] = DefaultWeights[f]
		}
	}
	return &Engine{defaults: merged, logger: log}
}

// ResolveWeights merges per-request overrides into the defaults. Overridden
// factors keep their given weight; the remaining factors are scaled so the
// total sums to 1. Negative or unrecognized overrides are ignored.
func (e *Engine) ResolveWeights(overrides map[string]float64) map[string]float64 {
	resolved := make(map[string]float64, len(factorOrder))

	overridden := make(map[string]bool, len(overrides))
	var overriddenSum, remainderSum float64
	for _, f := range factorOrder {
		if w, ok := overrides[f]; ok && w >= 0 {
			resolved[f] = w
			overridden[f] = true
			overriddenSum += w
		} else {
			resolved[f] = e.defaults[f]
			remainderSum += e.defaults[f]
		}
	}

	switch {
	case len(overridden) == len(factorOrder) || remainderSum == 0:
		// Everything fixed by the caller; normalize the whole set.
		normalize(resolved)
	case overriddenSum >= 1:
		// Overrides already consume the full budget.
		for _, f := range factorOrder {
			if !overridden[f] {
				resolved[f] = 0
			}
		}
		normalize(resolved)
	default:
		scale := (1 - overriddenSum) / remainderSum
		for _, f := range factorOrder {
			if !overridden[f] {
				resolved[f] *= scale
			}
		}
	}
	return resolved
}

func normalize(weights map[string]float64) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		for f, w := range DefaultWeights {
			weights[f] = w
		}
		return
	}
	for f := range weights {
		weights[f] /= sum
	}
}

// Rank scores every candidate against the merged signals and returns the
// ordered recommendation. Candidates with missing or malformed factor
// inputs score that factor at worst case rather than being excluded, so
// the output always covers the full candidate set.
func (e *Engine) Rank(
	candidates []models.Candidate,
	eligibility []models.EligibilityFinding,
	afford *models.AffordabilitySummary,
	overrides map[string]float64,
) models.Recommendation {
	weights := e.ResolveWeights(overrides)
	fallbackGrant := totalEligibleAmount(eligibility)

	scored := make([]models.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		factors := e.scoreFactors(c, fallbackGrant, afford)
		score := weights[FactorAffordability]*factors.Affordability +
			weights[FactorGrant]*factors.Grant +
			weights[FactorLocation]*factors.Location +
			weights[FactorRisk]*factors.Risk

		scored = append(scored, models.ScoredCandidate{
			CandidateID: c.ID,
			Price:       c.Price,
			Score:       score,
			Factors:     factors,
			Rationale:   buildRationale(weights, factors),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Price != scored[j].Price {
			return scored[i].Price < scored[j].Price
		}
		return scored[i].CandidateID < scored[j].CandidateID
	})

	return models.Recommendation{Candidates: scored}
}

// scoreFactors normalizes every factor to [0,1]. Missing inputs score 0.
func (e *Engine) scoreFactors(c models.Candidate, fallbackGrant float64, afford *models.AffordabilitySummary) models.FactorScores {
	var f models.FactorScores

	if c.Price <= 0 {
		e.logger.Warn("Candidate has no usable price, scoring worst case", map[string]interface{}{
			"candidate_id": c.ID,
		})
		if c.LocationMatch != nil {
			f.Location = clamp01(*c.LocationMatch)
		}
		return f
	}

	if afford != nil && afford.MaxAffordablePrice > 0 {
		f.Affordability = 1 - clamp01(c.Price/afford.MaxAffordablePrice)
	}

	grant := c.GrantAmount
	if grant <= 0 {
		grant = fallbackGrant
	}
	if grant > 0 {
		f.Grant = clamp01(grant / c.Price)
	}

	if c.LocationMatch != nil {
		f.Location = clamp01(*c.LocationMatch)
	}

	if c.Risk != nil {
		f.Risk = 1 - clamp01(*c.Risk)
	}

	return f
}

func buildRationale(weights map[string]float64, f models.FactorScores) string {
	values := map[string]float64{
		FactorAffordability: f.Affordability,
		FactorGrant:         f.Grant,
		FactorLocation:      f.Location,
		FactorRisk:          f.Risk,
	}
	out := ""
	for i, factor := range factorOrder {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %.2f*%.3f", factor, weights[factor], values[factor])
	}
	return out
}

func totalEligibleAmount(findings []models.EligibilityFinding) float64 {
	var total float64
	for _, f := range findings {
		if f.Eligible {
			total += f.Amount
		}
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
