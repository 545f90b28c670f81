// internal/decision/assess.go
package decision

import (
	"housing-advisor/internal/finance"
	"housing-advisor/internal/models"
)

// AssessRisk grades the financial risk of buying the candidate given the
// user's income and the estimated monthly repayment.
func AssessRisk(c models.Candidate, flatType string, monthlyRepayment, monthlyIncome float64) *models.RiskAssessment {
	assessment := &models.RiskAssessment{
		Level:         "Low",
		EmergencyFund: finance.EmergencyFund(monthlyRepayment),
	}

	if monthlyIncome > 0 {
		ratio := monthlyRepayment / monthlyIncome
		if ratio > 0.35 {
			assessment.Level = "High"
			assessment.Factors = append(assessment.Factors, "High debt-to-income ratio")
		} else if ratio > 0.30 {
			assessment.Level = "Medium"
			assessment.Factors = append(assessment.Factors, "Moderate debt-to-income ratio")
		}
	}

	if c.AgeYears > 30 {
		assessment.Factors = append(assessment.Factors, "Older property with higher maintenance costs")
	}
	if flatType == "HDB" && c.AgeYears > 60 {
		assessment.Factors = append(assessment.Factors, "Limited remaining lease years")
	}

	return assessment
}

// SuggestNextSteps lists concrete follow-ups for the top candidate.
func SuggestNextSteps(hasGrants bool, flatType string, monthlyRepayment, monthlyIncome float64) []string {
	var steps []string

	if hasGrants {
		steps = append(steps, "Apply for eligible housing grants to reduce purchase cost")
	}
	if flatType == "HDB" {
		steps = append(steps,
			"Check HDB eligibility and application procedures",
			"Prepare required documents for HDB application")
	}
	steps = append(steps,
		"Get pre-approved for housing loan to confirm budget",
		"Arrange for property valuation",
		"Schedule property viewing and inspection",
		"Research the neighbourhood and amenities")

	if monthlyIncome > 0 && monthlyRepayment/monthlyIncome > 0.30 {
		steps = append(steps, "Consult with a financial advisor on affordability")
	}
	return steps
}
