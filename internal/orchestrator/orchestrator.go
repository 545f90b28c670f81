// internal/orchestrator/orchestrator.go
// Package orchestrator executes one advisory turn: plan, concurrent batch
// dispatch with retry and degrade, transactional context merge, and the
// consolidated response.
package orchestrator

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"housing-advisor/internal/common/config"
	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/common/metrics"
	"housing-advisor/internal/contextstore"
	"housing-advisor/internal/models"
	"housing-advisor/internal/profile"
	"housing-advisor/internal/router"
	"housing-advisor/internal/specialists"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Orchestrator coordinates a session's turns. One turn is processed at a
// time per session; units within a batch run concurrently.
type Orchestrator struct {
	store        contextstore.Store
	router       *router.Router
	registry     *specialists.Registry
	cfg          config.OrchestratorConfig
	historyLimit int
	logger       logger.Logger
}

func New(
	store contextstore.Store,
	r *router.Router,
	registry *specialists.Registry,
	cfg config.OrchestratorConfig,
	historyLimit int,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:        store,
		router:       r,
		registry:     registry,
		cfg:          cfg,
		historyLimit: historyLimit,
		logger:       log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

type intent int

const (
	intentQuery intent = iota
	intentReset
	intentClose
)

func detectIntent(query string) intent {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "start over"), strings.Contains(q, "reset"), strings.Contains(q, "restart"):
		return intentReset
	case strings.Contains(q, "close my session"), strings.Contains(q, "end session"), strings.Contains(q, "we are done"):
		return intentClose
	}
	return intentQuery
}

// Handle runs one advisory turn for the session.
func (o *Orchestrator) Handle(ctx context.Context, sessionID, query string, weights map[string]float64) (*models.ConsolidatedResponse, error) {
	start := time.Now()
	turnID := uuid.NewString()

	if o.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.TurnTimeoutDuration())
		defer cancel()
	}

	uc, err := o.loadOrCreate(ctx, sessionID)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("context_error").Inc()
		return nil, err
	}

	switch detectIntent(query) {
	case intentReset:
		return o.reset(ctx, sessionID, turnID)
	case intentClose:
		return o.close(ctx, sessionID, turnID)
	}

	if uc.Stage == models.StageClosed {
		metrics.TurnsTotal.WithLabelValues("rejected_closed").Inc()
		return nil, errors.NewSessionClosedError(sessionID)
	}

	// Learn profile attributes from the query before planning so the plan
	// and the units see them. The same extraction is replayed inside the
	// transactional update.
	profile.Extract(&uc.Profile, query)

	plan, err := o.router.Plan(ctx, uc, query)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("plan_error").Inc()
		return nil, err
	}

	completed, shortCircuited := o.execute(ctx, uc, query, weights, plan)

	updated, err := o.merge(ctx, sessionID, turnID, query, completed)
	if err != nil {
		metrics.TurnsTotal.WithLabelValues("context_error").Inc()
		return nil, err
	}

	resp := o.buildResponse(sessionID, turnID, updated, completed)
	if shortCircuited {
		resp.Message = "Some information sources were unavailable; this is a best-effort answer."
	}

	status := "ok"
	if resp.Degraded {
		status = "degraded"
	}
	metrics.TurnsTotal.WithLabelValues(status).Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())

	o.logger.Info("turn completed", map[string]interface{}{
		"session_id": sessionID,
		"turn_id":    turnID,
		"stage":      string(resp.JourneyStage),
		"degraded":   resp.Degraded,
	})
	return resp, nil
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, sessionID string) (*models.UserContext, error) {
	uc, err := o.store.Get(ctx, sessionID)
	if err == contextstore.ErrNotFound {
		return o.store.Create(ctx, sessionID)
	}
	return uc, err
}

func (o *Orchestrator) reset(ctx context.Context, sessionID, turnID string) (*models.ConsolidatedResponse, error) {
	updated, err := o.store.Update(ctx, sessionID, func(uc *models.UserContext) error {
		uc.Reset()
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TurnsTotal.WithLabelValues("reset").Inc()
	return &models.ConsolidatedResponse{
		SessionID:    sessionID,
		TurnID:       turnID,
		JourneyStage: updated.Stage,
		Message:      "Session restarted. Let's begin again: tell me about yourself and what you are looking for.",
	}, nil
}

func (o *Orchestrator) close(ctx context.Context, sessionID, turnID string) (*models.ConsolidatedResponse, error) {
	updated, err := o.store.Update(ctx, sessionID, func(uc *models.UserContext) error {
		uc.Close()
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TurnsTotal.WithLabelValues("closed").Inc()
	return &models.ConsolidatedResponse{
		SessionID:    sessionID,
		TurnID:       turnID,
		JourneyStage: updated.Stage,
		Message:      "Session closed. Say \"reset\" if you want to start a new journey.",
	}, nil
}

// execute runs the plan batch by batch. It returns every settled result
// keyed by category and whether the plan short-circuited.
func (o *Orchestrator) execute(
	ctx context.Context,
	uc *models.UserContext,
	query string,
	weights map[string]float64,
	plan router.ExecutionPlan,
) (map[models.Category]models.SpecialistResult, bool) {
	completed := make(map[models.Category]models.SpecialistResult)
	var mu sync.Mutex

	for i, batch := range plan.Batches {
		g, batchCtx := errgroup.WithContext(ctx)
		for _, cat := range batch {
			cat := cat
			g.Go(func() error {
				res := o.runUnit(batchCtx, uc, query, weights, cat, completed, &mu)
				mu.Lock()
				completed[cat] = res
				mu.Unlock()
				return nil
			})
		}
		// Units never return errors through the group; all failures settle
		// as degraded results.
		_ = g.Wait()

		if failed, ok := o.shortCircuitCategory(plan.Batches[i+1:], completed); ok {
			o.logger.Warn("plan short-circuited", map[string]interface{}{
				"session_id": uc.SessionID,
				"failed":     string(failed),
			})
			o.bestEffortNarrative(ctx, uc, query, completed, &mu)
			return completed, true
		}
	}
	return completed, false
}

// runUnit dispatches one specialist with the per-unit deadline and the
// retry-once policy for timeouts and upstream data failures.
func (o *Orchestrator) runUnit(
	ctx context.Context,
	uc *models.UserContext,
	query string,
	weights map[string]float64,
	cat models.Category,
	completed map[models.Category]models.SpecialistResult,
	mu *sync.Mutex,
) models.SpecialistResult {
	unit, ok := o.registry.Get(cat)
	if !ok {
		return models.NewDegradedResult(cat, "no specialist registered for category")
	}

	mu.Lock()
	prereqs := make(map[models.Category]models.SpecialistResult, len(completed))
	for k, v := range completed {
		prereqs[k] = v
	}
	mu.Unlock()

	req := &models.SpecialistRequest{
		Query:   query,
		Context: *uc,
		Prereqs: prereqs,
		Weights: weights,
	}

	attempts := 1 + o.cfg.MaxRetries
	var lastErr *errors.StandardError
	for attempt := 0; attempt < attempts; attempt++ {
		start := time.Now()
		unitCtx := ctx
		var cancel context.CancelFunc
		if o.cfg.UnitTimeout > 0 {
			unitCtx, cancel = context.WithTimeout(ctx, o.cfg.UnitTimeoutDuration())
		}

		res, err := unit.Run(unitCtx, req)
		if cancel != nil {
			cancel()
		}
		metrics.SpecialistRunDuration.WithLabelValues(string(cat)).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.SpecialistRunsCompleted.WithLabelValues(string(cat)).Inc()
			return res
		}

		// A turn-level cancellation settles as a timeout, not a crash.
		if ctx.Err() != nil {
			lastErr = errors.NewUnitTimeoutError(string(cat))
			break
		}

		lastErr = errors.AsStandard(err, string(cat))
		metrics.SpecialistRunsFailed.WithLabelValues(string(cat), string(lastErr.Code)).Inc()

		if errors.GetRetryCount(lastErr.Code) == 0 {
			break
		}
		o.logger.Warn("specialist failed, retrying once", map[string]interface{}{
			"session_id": uc.SessionID,
			"category":   string(cat),
			"code":       string(lastErr.Code),
		})
	}

	metrics.SpecialistRunsDegraded.WithLabelValues(string(cat)).Inc()
	return models.NewDegradedResult(cat, lastErr.Message)
}

// shortCircuitCategory reports a degraded category that is a hard
// dependency of every remaining scheduled category. Only then does the
// plan stop early.
func (o *Orchestrator) shortCircuitCategory(
	remaining [][]models.Category,
	completed map[models.Category]models.SpecialistResult,
) (models.Category, bool) {
	var remainingCats []models.Category
	for _, batch := range remaining {
		remainingCats = append(remainingCats, batch...)
	}
	if len(remainingCats) == 0 {
		return "", false
	}

	for cat, res := range completed {
		if !res.Degraded {
			continue
		}
		blocksAll := true
		for _, rem := range remainingCats {
			if !dependsOn(rem, cat) {
				blocksAll = false
				break
			}
		}
		if blocksAll {
			return cat, true
		}
	}
	return "", false
}

// dependsOn reports whether cat transitively requires dep.
func dependsOn(cat, dep models.Category) bool {
	for _, d := range router.Dependencies(cat) {
		if d == dep || dependsOn(d, dep) {
			return true
		}
	}
	return false
}

// bestEffortNarrative runs the Writer over whatever settled so the
// short-circuited response still carries a usable summary.
func (o *Orchestrator) bestEffortNarrative(
	ctx context.Context,
	uc *models.UserContext,
	query string,
	completed map[models.Category]models.SpecialistResult,
	mu *sync.Mutex,
) {
	if _, done := completed[models.CategoryWriter]; done {
		return
	}
	res := o.runUnit(ctx, uc, query, nil, models.CategoryWriter, completed, mu)
	completed[models.CategoryWriter] = res
}

// merge applies the turn's results to the session in one serialized update.
// The update runs detached from the turn deadline so a timed-out turn still
// persists whatever settled.
func (o *Orchestrator) merge(
	ctx context.Context,
	sessionID, turnID, query string,
	completed map[models.Category]models.SpecialistResult,
) (*models.UserContext, error) {
	return o.store.Update(context.WithoutCancel(ctx), sessionID, func(uc *models.UserContext) error {
		profile.Extract(&uc.Profile, query)

		var advanced []models.Category
		var categories []models.Category
		for cat, res := range completed {
			uc.MergeResult(res)
			categories = append(categories, cat)
			if !res.Degraded {
				advanced = append(advanced, cat)
			}
		}
		uc.AdvanceStage(models.StageForCategories(advanced))
		uc.Turns++
		uc.RecordInteraction(models.Interaction{
			TurnID:     turnID,
			Query:      query,
			Categories: categories,
			Stage:      uc.Stage,
			Timestamp:  time.Now().UTC(),
		}, o.historyLimit)
		return nil
	})
}

func (o *Orchestrator) buildResponse(
	sessionID, turnID string,
	uc *models.UserContext,
	completed map[models.Category]models.SpecialistResult,
) *models.ConsolidatedResponse {
	resp := &models.ConsolidatedResponse{
		SessionID:    sessionID,
		TurnID:       turnID,
		JourneyStage: uc.Stage,
		Results:      make(map[models.Category]json.RawMessage, len(completed)),
	}

	for cat, res := range completed {
		resp.Results[cat] = res.Payload
		if res.Degraded {
			resp.Degraded = true
			resp.DegradedCategories = append(resp.DegradedCategories, cat)
		}
	}
	sortCategories(resp.DegradedCategories)

	if res, ok := completed[models.CategoryDecision]; ok && !res.Degraded {
		var rec models.Recommendation
		if err := res.DecodePayload(&rec); err == nil {
			resp.Recommendation = &rec
		}
	}
	return resp
}

func sortCategories(cats []models.Category) {
	for i := 1; i < len(cats); i++ {
		for j := i; j > 0 && cats[j] < cats[j-1]; j-- {
			cats[j], cats[j-1] = cats[j-1], cats[j]
		}
	}
}
