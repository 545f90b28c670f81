// internal/router/router.go
// Package router classifies queries into specialist categories and builds
// the topologically ordered execution plan for a turn.
package router

import (
	"context"

	"housing-advisor/internal/common/errors"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/models"
)

// precedence is the static dependency table over specialist categories.
// It is acyclic by construction; changing it is a code change, not config.
var precedence = map[models.Category][]models.Category{
	models.CategoryProperty: nil,
	models.CategoryGrant:    nil,
	models.CategoryFilter:   {models.CategoryProperty, models.CategoryGrant},
	models.CategoryDecision: {models.CategoryFilter},
	models.CategoryWriter:   {models.CategoryDecision, models.CategoryGrant},
}

// Dependencies returns the direct prerequisites of a category.
func Dependencies(cat models.Category) []models.Category {
	return precedence[cat]
}

// ExecutionPlan is the ordered set of categories to run for one query.
// Categories inside a batch are independent and run concurrently; batches
// run in order.
type ExecutionPlan struct {
	Batches  [][]models.Category
	Labels   []Label
	Fallback bool
}

// Categories flattens the plan in batch order.
func (p *ExecutionPlan) Categories() []models.Category {
	var cats []models.Category
	for _, batch := range p.Batches {
		cats = append(cats, batch...)
	}
	return cats
}

// Contains reports whether the plan schedules the category.
func (p *ExecutionPlan) Contains(cat models.Category) bool {
	for _, batch := range p.Batches {
		for _, c := range batch {
			if c == cat {
				return true
			}
		}
	}
	return false
}

// Router builds execution plans from classified queries.
type Router struct {
	classifier Classifier
	logger     logger.Logger
}

func New(classifier Classifier, log logger.Logger) *Router {
	return &Router{
		classifier: classifier,
		logger:     log.WithFields(map[string]interface{}{"component": "router"}),
	}
}

// Plan classifies the query and computes the execution plan. Dependencies
// without an existing result in the context are inserted transitively, so
// the plan never has missing inputs. A query that classifies to nothing
// falls back to a standalone Writer pass over the existing context.
func (r *Router) Plan(ctx context.Context, uc *models.UserContext, query string) (ExecutionPlan, error) {
	labels, err := r.classifier.Classify(ctx, uc, query)
	if err != nil {
		return ExecutionPlan{}, errors.NewClassificationFailedError(err)
	}

	if len(labels) == 0 {
		r.logger.Info("no categories classified, falling back to writer", map[string]interface{}{
			"session_id": uc.SessionID,
		})
		return ExecutionPlan{
			Batches:  [][]models.Category{{models.CategoryWriter}},
			Fallback: true,
		}, nil
	}

	selected := make(map[models.Category]bool, len(labels))
	for _, l := range labels {
		selected[l.Category] = true
	}
	for _, l := range labels {
		r.insertMissingDeps(l.Category, uc, selected)
	}

	batches := r.batch(selected, uc)
	if len(batches) == 0 {
		return ExecutionPlan{}, errors.NewPlanEmptyError("no category could be scheduled")
	}

	r.logger.Debug("plan computed", map[string]interface{}{
		"session_id": uc.SessionID,
		"batches":    len(batches),
	})
	return ExecutionPlan{Batches: batches, Labels: labels}, nil
}

// insertMissingDeps pulls in, transitively, every dependency that has no
// result in the context yet.
func (r *Router) insertMissingDeps(cat models.Category, uc *models.UserContext, selected map[models.Category]bool) {
	for _, dep := range precedence[cat] {
		if selected[dep] || uc.HasResult(dep) {
			continue
		}
		selected[dep] = true
		r.insertMissingDeps(dep, uc, selected)
	}
}

// batch groups the selected categories into topological layers. A
// dependency is satisfied when it ran in an earlier batch, is absent from
// the plan (covered by a context result), or was never selected.
func (r *Router) batch(selected map[models.Category]bool, uc *models.UserContext) [][]models.Category {
	done := make(map[models.Category]bool)
	var batches [][]models.Category

	remaining := len(selected)
	for remaining > 0 {
		var batch []models.Category
		for _, cat := range models.AllCategories {
			if !selected[cat] || done[cat] {
				continue
			}
			ready := true
			for _, dep := range precedence[cat] {
				if selected[dep] && !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				batch = append(batch, cat)
			}
		}
		if len(batch) == 0 {
			// Unreachable with an acyclic table; bail rather than spin.
			break
		}
		for _, cat := range batch {
			done[cat] = true
		}
		remaining -= len(batch)
		batches = append(batches, batch)
	}
	return batches
}
