// internal/specialists/grant-eligibility/rules.go
package granteligibility

import (
	"fmt"

	"housing-advisor/internal/models"
)

// Grant scheme names.
const (
	SchemeEnhancedCPF = "Enhanced CPF Housing Grant"
	SchemeFamily      = "Family Grant"
	SchemeProximity   = "Proximity Housing Grant"
)

const familyGrantIncomeCeiling = 14000

// ehgTier maps a household income ceiling to its Enhanced CPF Housing Grant
// amount. Tiers step down 5,000 per 500 of income.
type ehgTier struct {
	incomeCeiling float64
	amount        float64
}

var ehgTiers = buildEHGTiers()

func buildEHGTiers() []ehgTier {
	// 120,000 at income <= 1,500 down to 5,000 at income <= 9,000.
	tiers := make([]ehgTier, 0, 24)
	amount := 120000.0
	for ceiling := 1500.0; ceiling <= 9000; ceiling += 500 {
		tiers = append(tiers, ehgTier{incomeCeiling: ceiling, amount: amount})
		amount -= 5000
	}
	return tiers
}

// evaluateSchemes applies the codified grant rules to the profile.
func evaluateSchemes(p *models.Profile) []models.EligibilityFinding {
	income, hasIncome := p.Field("monthly_income")
	citizen := p.Citizenship == "Singapore Citizen"

	findings := make([]models.EligibilityFinding, 0, 3)
	findings = append(findings, evaluateEHG(citizen, hasIncome, income))
	findings = append(findings, evaluateFamilyGrant(p, citizen, hasIncome, income))
	findings = append(findings, evaluateProximityGrant(p, citizen))
	return findings
}

func evaluateEHG(citizen, hasIncome bool, income float64) models.EligibilityFinding {
	f := models.EligibilityFinding{Scheme: SchemeEnhancedCPF}
	switch {
	case !citizen:
		f.Reason = "At least one applicant must be a Singapore Citizen"
	case !hasIncome:
		f.Reason = "Household income not yet provided"
	default:
		for _, tier := range ehgTiers {
			if income <= tier.incomeCeiling {
				f.Eligible = true
				f.Amount = tier.amount
				f.Reason = fmt.Sprintf("Household income %.0f falls in the <= %.0f tier", income, tier.incomeCeiling)
				return f
			}
		}
		f.Reason = fmt.Sprintf("Household income %.0f exceeds the 9,000 ceiling", income)
	}
	return f
}

func evaluateFamilyGrant(p *models.Profile, citizen, hasIncome bool, income float64) models.EligibilityFinding {
	f := models.EligibilityFinding{Scheme: SchemeFamily}
	switch {
	case !citizen:
		f.Reason = "At least one applicant must be a Singapore Citizen"
	case !hasIncome:
		f.Reason = "Household income not yet provided"
	case income > familyGrantIncomeCeiling:
		f.Reason = fmt.Sprintf("Household income %.0f exceeds the %d ceiling", income, familyGrantIncomeCeiling)
	default:
		f.Eligible = true
		f.Amount = 80000
		if rooms, ok := p.Field("rooms"); ok && rooms >= 5 {
			f.Amount = 50000
		}
		f.Reason = "Resale purchase within the income ceiling"
	}
	return f
}

func evaluateProximityGrant(p *models.Profile, citizen bool) models.EligibilityFinding {
	f := models.EligibilityFinding{Scheme: SchemeProximity}
	if !citizen {
		f.Reason = "At least one applicant must be a Singapore Citizen"
		return f
	}
	if near, ok := p.Field("near_parents"); ok && near > 0 {
		f.Eligible = true
		f.Amount = 20000
		f.Reason = "Living within 4km of parents"
		return f
	}
	f.Reason = "Proximity to parents not established"
	return f
}
