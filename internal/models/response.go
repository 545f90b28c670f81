// internal/models/response.go
package models

import "encoding/json"

// ConsolidatedResponse is the union of one turn's results, returned to the
// caller after the context has been updated.
type ConsolidatedResponse struct {
	SessionID          string                      `json:"sessionId"`
	TurnID             string                      `json:"turnId"`
	JourneyStage       JourneyStage                `json:"journeyStage"`
	Results            map[Category]json.RawMessage `json:"results,omitempty"`
	Recommendation     *Recommendation             `json:"recommendation,omitempty"`
	Degraded           bool                        `json:"degraded"`
	DegradedCategories []Category                  `json:"degradedCategories,omitempty"`
	Message            string                      `json:"message,omitempty"`
}
