// internal/specialists/specialist.go
// Package specialists defines the polymorphic specialist unit contract and
// the static registry the orchestrator dispatches through.
package specialists

import (
	"context"
	"sort"

	"housing-advisor/internal/models"
)

// Unit is the common specialist contract. Run must be idempotent: the
// orchestrator re-dispatches with identical inputs after a timeout or an
// upstream data failure. Failures are reported as *errors.StandardError
// values carrying a unit error code.
type Unit interface {
	Category() models.Category
	Run(ctx context.Context, req *models.SpecialistRequest) (models.SpecialistResult, error)
}

// Registry is the static table of available units, one per category.
type Registry struct {
	units map[models.Category]Unit
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[models.Category]Unit)}
}

// Register adds a unit, replacing any previous unit for its category.
func (r *Registry) Register(u Unit) {
	r.units[u.Category()] = u
}

// Get looks up the unit for a category.
func (r *Registry) Get(cat models.Category) (Unit, bool) {
	u, ok := r.units[cat]
	return u, ok
}

// Categories lists the registered categories in deterministic order.
func (r *Registry) Categories() []models.Category {
	cats := make([]models.Category, 0, len(r.units))
	for c := range r.units {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
