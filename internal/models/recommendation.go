// internal/models/recommendation.go
package models

// Candidate is a property option being scored. Derived per decision pass
// and never persisted independently of the recommendation it produced.
type Candidate struct {
	ID            string   `json:"id"`
	Price         float64  `json:"price"`
	AgeYears      int      `json:"ageYears,omitempty"`
	GrantAmount   float64  `json:"grantAmount,omitempty"`
	LocationMatch *float64 `json:"locationMatch,omitempty"`
	Risk          *float64 `json:"risk,omitempty"`
}

// FactorScores is the normalized per-factor breakdown of one score.
type FactorScores struct {
	Affordability float64 `json:"affordability"`
	Grant         float64 `json:"grant"`
	Location      float64 `json:"location"`
	Risk          float64 `json:"risk"`
}

// ScoredCandidate is one ranked entry of a recommendation.
type ScoredCandidate struct {
	CandidateID string       `json:"candidateId"`
	Price       float64      `json:"price"`
	Score       float64      `json:"score"`
	Factors     FactorScores `json:"factors"`
	Rationale   string       `json:"rationale"`
}

// RiskAssessment summarizes the financial risk of the top candidate.
type RiskAssessment struct {
	Level         string   `json:"level"`
	Factors       []string `json:"factors,omitempty"`
	EmergencyFund float64  `json:"emergencyFund,omitempty"`
}

// Recommendation is the ordered output of the decision engine. Scores are
// non-increasing by position; ties break by lower price, then candidate ID.
type Recommendation struct {
	Candidates     []ScoredCandidate `json:"candidates"`
	RiskAssessment *RiskAssessment   `json:"riskAssessment,omitempty"`
	NextSteps      []string          `json:"nextSteps,omitempty"`
}

// Top returns the highest-ranked candidate, if any.
func (r *Recommendation) Top() (ScoredCandidate, bool) {
	if len(r.Candidates) == 0 {
		return ScoredCandidate{}, false
	}
	return r.Candidates[0], true
}
