// internal/models/context.go
package models

import "time"

// JourneyStage is the coarse progress marker for an advisory session.
type JourneyStage string

const (
	StageDiscovery     JourneyStage = "discovery"
	StageQualification JourneyStage = "qualification"
	StageSearch        JourneyStage = "search"
	StageEvaluation    JourneyStage = "evaluation"
	StageDecision      JourneyStage = "decision"
	StageClosed        JourneyStage = "closed"
)

// stageOrder fixes the forward ordering of journey stages.
var stageOrder = map[JourneyStage]int{
	StageDiscovery:     0,
	StageQualification: 1,
	StageSearch:        2,
	StageEvaluation:    3,
	StageDecision:      4,
	StageClosed:        5,
}

// Rank returns the stage's position in the journey. Unknown stages rank
// as Discovery so corrupt data never blocks a session.
func (s JourneyStage) Rank() int {
	if r, ok := stageOrder[s]; ok {
		return r
	}
	return 0
}

// Before reports whether s precedes other in the journey.
func (s JourneyStage) Before(other JourneyStage) bool {
	return s.Rank() < other.Rank()
}

// stageForCategory maps a produced specialist result to the minimum stage
// it implies for the session.
var stageForCategory = map[Category]JourneyStage{
	CategoryGrant:    StageQualification,
	CategoryProperty: StageSearch,
	CategoryFilter:   StageEvaluation,
	CategoryDecision: StageDecision,
}

// StageForCategories returns the highest stage implied by the given result
// categories, or Discovery when none of them imply progress.
func StageForCategories(categories []Category) JourneyStage {
	stage := StageDiscovery
	for _, c := range categories {
		if implied, ok := stageForCategory[c]; ok && stage.Before(implied) {
			stage = implied
		}
	}
	return stage
}

// Interaction is one recorded turn of the conversation.
type Interaction struct {
	TurnID     string       `json:"turnId"`
	Query      string       `json:"query"`
	Categories []Category   `json:"categories"`
	Stage      JourneyStage `json:"stage"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Profile holds what is known about the user. Numeric attributes live in an
// open map so new fields can be added without a schema migration.
type Profile struct {
	Citizenship    string             `json:"citizenship,omitempty"`
	FlatType       string             `json:"flatType,omitempty"`
	PreferredAreas []string           `json:"preferredAreas,omitempty"`
	Fields         map[string]float64 `json:"fields,omitempty"`
}

// Essential profile fields used for the completion score.
var essentialProfileFields = []string{"monthly_income", "age", "budget"}

// Field returns a named numeric attribute and whether it is set.
func (p *Profile) Field(name string) (float64, bool) {
	if p.Fields == nil {
		return 0, false
	}
	v, ok := p.Fields[name]
	return v, ok
}

// SetField sets a named numeric attribute.
func (p *Profile) SetField(name string, value float64) {
	if p.Fields == nil {
		p.Fields = make(map[string]float64)
	}
	p.Fields[name] = value
}

// CompletionScore is the fraction of essential profile inputs present.
func (p *Profile) CompletionScore() float64 {
	total := len(essentialProfileFields) + 1 // citizenship counts too
	have := 0
	if p.Citizenship != "" {
		have++
	}
	for _, f := range essentialProfileFields {
		if _, ok := p.Field(f); ok {
			have++
		}
	}
	return float64(have) / float64(total)
}

// MissingFields lists the essential profile inputs not yet captured.
func (p *Profile) MissingFields() []string {
	var missing []string
	if p.Citizenship == "" {
		missing = append(missing, "citizenship")
	}
	for _, f := range essentialProfileFields {
		if _, ok := p.Field(f); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// UserContext is the per-session state. It is owned by the context store and
// mutated only through the store's serialized update operation.
type UserContext struct {
	SessionID string                        `json:"sessionId"`
	Profile   Profile                       `json:"profile"`
	Stage     JourneyStage                  `json:"stage"`
	Results   map[Category]SpecialistResult `json:"results,omitempty"`
	History   []Interaction                 `json:"history,omitempty"`
	Turns     int                           `json:"turns"`
	CreatedAt time.Time                     `json:"createdAt"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

// NewUserContext initializes a session at the Discovery stage.
func NewUserContext(sessionID string) *UserContext {
	now := time.Now().UTC()
	return &UserContext{
		SessionID: sessionID,
		Stage:     StageDiscovery,
		Results:   make(map[Category]SpecialistResult),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasResult reports whether the session already holds a result for the
// category.
func (c *UserContext) HasResult(cat Category) bool {
	_, ok := c.Results[cat]
	return ok
}

// MergeResult stores the latest result for its category.
func (c *UserContext) MergeResult(res SpecialistResult) {
	if c.Results == nil {
		c.Results = make(map[Category]SpecialistResult)
	}
	c.Results[res.Category] = res
}

// AdvanceStage moves the journey forward to target. Backward moves are
// ignored; use Reset for the out-of-band restart.
func (c *UserContext) AdvanceStage(target JourneyStage) {
	if c.Stage.Before(target) {
		c.Stage = target
	}
}

// Close marks the session terminal. No further dispatch is permitted until
// a Reset.
func (c *UserContext) Close() {
	c.Stage = StageClosed
}

// Reset returns the session to Discovery, clearing accumulated results and
// history but keeping the learned profile.
func (c *UserContext) Reset() {
	c.Stage = StageDiscovery
	c.Results = make(map[Category]SpecialistResult)
	c.History = nil
	c.Turns = 0
}

// RecordInteraction appends a turn to the bounded history.
func (c *UserContext) RecordInteraction(in Interaction, limit int) {
	c.History = append(c.History, in)
	if limit > 0 && len(c.History) > limit {
		c.History = c.History[len(c.History)-limit:]
	}
}
