// internal/finance/affordability.go
// Package finance holds the pure financial functions consumed by the
// specialist units. Every function is deterministic and side-effect free.
package finance

import (
	"errors"
	"math"
)

// Singapore lending guidelines.
const (
	// TDSRLimit caps total monthly debt servicing at 60% of gross income.
	TDSRLimit = 0.60
	// ConservativeHousingRatio caps housing spend at 30% of gross income.
	ConservativeHousingRatio = 0.30
	// LoanMultiplier approximates the loan principal supportable per dollar
	// of monthly repayment over a 25-year loan at 2.6%.
	LoanMultiplier = 280
	// HDBIncomeCeiling is the household income ceiling for new HDB flats.
	HDBIncomeCeiling = 14000
)

var (
	ErrNonPositiveIncome = errors.New("monthly income must be greater than zero")
	ErrDebtExceedsTDSR   = errors.New("existing debt obligations exceed the TDSR limit")
)

// Affordability is the financial picture derived from income, debt and
// deposit.
type Affordability struct {
	MaxMonthlyRepayment float64
	MaxLoan             float64
	MaxPropertyPrice    float64
	RecommendedDeposit  float64
	TDSRUtilization     float64
	IncomeUtilization   float64
	HDBEligible         bool
	PropertyTypes       []string
}

// CalculateAffordability applies the TDSR and conservative housing caps to
// estimate the maximum supportable property price.
func CalculateAffordability(monthlyIncome, existingDebt, deposit float64) (Affordability, error) {
	if monthlyIncome <= 0 {
		return Affordability{}, ErrNonPositiveIncome
	}

	maxTotalPayment := monthlyIncome * TDSRLimit
	availableForHousing := maxTotalPayment - existingDebt
	if availableForHousing <= 0 {
		return Affordability{}, ErrDebtExceedsTDSR
	}

	conservativeBudget := monthlyIncome * ConservativeHousingRatio
	repayment := math.Min(availableForHousing, conservativeBudget)

	loan := repayment * LoanMultiplier
	price := loan + deposit

	hdbEligible := monthlyIncome <= HDBIncomeCeiling
	types := []string{"HDB", "EC"}
	if !hdbEligible {
		types = []string{"HDB", "EC", "Private"}
	}

	return Affordability{
		MaxMonthlyRepayment: repayment,
		MaxLoan:             loan,
		MaxPropertyPrice:    price,
		RecommendedDeposit:  price * 0.25,
		TDSRUtilization:     (existingDebt + repayment) / monthlyIncome,
		IncomeUtilization:   repayment / monthlyIncome,
		HDBEligible:         hdbEligible,
		PropertyTypes:       types,
	}, nil
}

// LoanRepayment is the amortization summary for a fixed-rate loan.
type LoanRepayment struct {
	MonthlyPayment float64
	TotalPayment   float64
	TotalInterest  float64
}

// CalculateLoanRepayment computes the standard amortized monthly payment.
func CalculateLoanRepayment(principal, annualRatePercent float64, termYears int) (LoanRepayment, error) {
	if principal <= 0 || annualRatePercent < 0 || termYears <= 0 {
		return LoanRepayment{}, errors.New("all loan parameters must be positive")
	}

	monthlyRate := annualRatePercent / 100 / 12
	numPayments := float64(termYears * 12)

	var monthly float64
	if monthlyRate > 0 {
		growth := math.Pow(1+monthlyRate, numPayments)
		monthly = principal * (monthlyRate * growth) / (growth - 1)
	} else {
		monthly = principal / numPayments
	}

	total := monthly * numPayments
	return LoanRepayment{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total - principal,
	}, nil
}

// EmergencyFund is the recommended buffer: six months of repayments.
func EmergencyFund(monthlyRepayment float64) float64 {
	return monthlyRepayment * 6
}
