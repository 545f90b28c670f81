// internal/models/listing.go
package models

// Listing is one property option returned by the Property unit.
type Listing struct {
	ID       string  `json:"id" db:"id"`
	Title    string  `json:"title,omitempty" db:"title"`
	Price    float64 `json:"price" db:"price"`
	Town     string  `json:"town,omitempty" db:"town"`
	FlatType string  `json:"flatType,omitempty" db:"flat_type"`
	Rooms    int     `json:"rooms,omitempty" db:"rooms"`
	AgeYears int     `json:"ageYears,omitempty" db:"age_years"`
	Source   string  `json:"source,omitempty" db:"source"`
}

// PropertyPayload is the Property unit's payload.
type PropertyPayload struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
}

// EligibilityFinding is one grant scheme evaluated against the profile.
type EligibilityFinding struct {
	Scheme   string  `json:"scheme"`
	Eligible bool    `json:"eligible"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason,omitempty"`
}

// GrantPayload is the Grant unit's payload.
type GrantPayload struct {
	Findings    []EligibilityFinding `json:"findings"`
	TotalAmount float64              `json:"totalAmount"`
}

// TotalEligibleAmount sums amounts across eligible findings.
func (g *GrantPayload) TotalEligibleAmount() float64 {
	var total float64
	for _, f := range g.Findings {
		if f.Eligible {
			total += f.Amount
		}
	}
	return total
}

// FilterPayload is the Filter unit's payload: the surviving subset with a
// per-listing location match in [0,1].
type FilterPayload struct {
	Listings      []Listing          `json:"listings"`
	LocationMatch map[string]float64 `json:"locationMatch,omitempty"`
	Removed       int                `json:"removed"`
}

// AffordabilitySummary is the financial picture computed from the profile.
type AffordabilitySummary struct {
	MaxAffordablePrice    float64 `json:"maxAffordablePrice"`
	MaxMonthlyRepayment   float64 `json:"maxMonthlyRepayment"`
	MaxLoan               float64 `json:"maxLoan"`
	RecommendedBudget     float64 `json:"recommendedBudget"`
	IncomeCeilingExceeded bool    `json:"incomeCeilingExceeded,omitempty"`
}

// WriterPayload is the Writer unit's payload: the user-facing narrative.
type WriterPayload struct {
	Narrative     string                `json:"narrative"`
	Affordability *AffordabilitySummary `json:"affordability,omitempty"`
}
