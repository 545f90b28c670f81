// internal/specialists/decision-scoring/config.go
package decisionscoring

import "time"

type Config struct {
	Timeout time.Duration
	// Loan assumptions for the repayment estimate behind the risk summary.
	LoanRatePercent float64
	LoanTermYears   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         5 * time.Second,
		LoanRatePercent: 2.6,
		LoanTermYears:   25,
	}
}
