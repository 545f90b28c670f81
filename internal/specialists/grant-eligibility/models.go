// internal/specialists/grant-eligibility/models.go
package granteligibility

import "context"

// SchemeDoc is one knowledge-base document describing a grant scheme.
type SchemeDoc struct {
	Scheme  string `json:"scheme"`
	Summary string `json:"summary"`
	URL     string `json:"url,omitempty"`
}

// KnowledgeSearch is the injected lookup capability for scheme documents.
// The production implementation queries Elasticsearch; tests substitute a
// fake. A failing lookup degrades the rationale, not the eligibility
// findings themselves.
type KnowledgeSearch interface {
	Lookup(ctx context.Context, query string) ([]SchemeDoc, error)
}
