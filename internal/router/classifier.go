// internal/router/classifier.go
package router

import (
	"context"
	"strings"

	"housing-advisor/internal/models"
)

// Label is one classified category with its confidence.
type Label struct {
	Category   models.Category
	Confidence float64
}

// Classifier maps a query to zero or more specialist categories. It is an
// injected capability: the router treats it as a black box.
type Classifier interface {
	Classify(ctx context.Context, uc *models.UserContext, query string) ([]Label, error)
}

// KeywordClassifier is the shipped classifier: a keyword table per
// category, scored by hit count.
type KeywordClassifier struct {
	keywords map[models.Category][]string
}

// NewKeywordClassifier builds the classifier with the default keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: map[models.Category][]string{
			models.CategoryGrant: {
				"grant", "cpf", "subsidy", "subsidies", "eligible", "eligibility", "scheme",
			},
			models.CategoryProperty: {
				"flat", "property", "listing", "resale", "bto", "condo", "apartment",
				"search", "find", "show me", "available",
			},
			models.CategoryFilter: {
				"filter", "narrow", "shortlist", "which of these", "fit", "suit",
			},
			models.CategoryDecision: {
				"decide", "decision", "recommend", "best option", "should i buy",
				"compare", "rank", "which one",
			},
			models.CategoryWriter: {
				"summarize", "summary", "explain", "afford", "repayment", "loan",
				"budget", "tdsr", "overview",
			},
		},
	}
}

// Classify scores each category by keyword hits. Confidence grows with the
// number of distinct hits and saturates at 0.95.
func (c *KeywordClassifier) Classify(_ context.Context, _ *models.UserContext, query string) ([]Label, error) {
	q := strings.ToLower(query)

	var labels []Label
	for _, cat := range models.AllCategories {
		hits := 0
		for _, kw := range c.keywords[cat] {
			if strings.Contains(q, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		confidence := 0.5 + 0.15*float64(hits)
		if confidence > 0.95 {
			confidence = 0.95
		}
		labels = append(labels, Label{Category: cat, Confidence: confidence})
	}
	return labels, nil
}
