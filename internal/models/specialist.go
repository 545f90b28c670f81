// internal/models/specialist.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category identifies a specialist unit variant.
type Category string

const (
	CategoryProperty Category = "property"
	CategoryGrant    Category = "grant"
	CategoryFilter   Category = "filter"
	CategoryDecision Category = "decision"
	CategoryWriter   Category = "writer"
)

// AllCategories lists every specialist category in precedence-table order.
var AllCategories = []Category{
	CategoryProperty,
	CategoryGrant,
	CategoryFilter,
	CategoryDecision,
	CategoryWriter,
}

// ParseCategory converts a label into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown specialist category: %q", s)
}

// SpecialistRequest is the immutable input to one specialist run. It is
// created per dispatch and discarded after the unit returns.
type SpecialistRequest struct {
	Query   string                        `json:"query"`
	Context UserContext                   `json:"context"`
	Prereqs map[Category]SpecialistResult `json:"prereqs,omitempty"`
	Weights map[string]float64            `json:"weights,omitempty"`
}

// Prereq returns the prerequisite result for a category produced earlier in
// the same plan, falling back to the session's accumulated results.
func (r *SpecialistRequest) Prereq(cat Category) (SpecialistResult, bool) {
	if res, ok := r.Prereqs[cat]; ok {
		return res, true
	}
	res, ok := r.Context.Results[cat]
	return res, ok
}

// SpecialistResult is the shared result envelope produced by every unit.
// The payload shape is fixed per category; it is kept as raw JSON so the
// envelope survives storage round-trips without knowing every shape.
type SpecialistResult struct {
	Category   Category        `json:"category"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Confidence float64         `json:"confidence"`
	Rationale  string          `json:"rationale,omitempty"`
	Degraded   bool            `json:"degraded,omitempty"`
	ProducedAt time.Time       `json:"producedAt"`
}

// NewResult builds a result envelope, marshaling the payload.
func NewResult(cat Category, payload interface{}, confidence float64, rationale string) (SpecialistResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return SpecialistResult{}, fmt.Errorf("marshal %s payload: %w", cat, err)
	}
	return SpecialistResult{
		Category:   cat,
		Payload:    raw,
		Confidence: confidence,
		Rationale:  rationale,
		ProducedAt: time.Now().UTC(),
	}, nil
}

// NewDegradedResult builds the empty-payload, zero-confidence result used
// when a unit exhausts its retries.
func NewDegradedResult(cat Category, reason string) SpecialistResult {
	return SpecialistResult{
		Category:   cat,
		Confidence: 0,
		Rationale:  reason,
		Degraded:   true,
		ProducedAt: time.Now().UTC(),
	}
}

// DecodePayload unmarshals the payload into the category's concrete shape.
func (r *SpecialistResult) DecodePayload(v interface{}) error {
	if len(r.Payload) == 0 {
		return fmt.Errorf("%s result has no payload", r.Category)
	}
	return json.Unmarshal(r.Payload, v)
}
