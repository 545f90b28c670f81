// internal/specialists/grant-eligibility/elastic.go
package granteligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticKnowledgeSearch looks up grant scheme documents in the grants
// knowledge index.
type ElasticKnowledgeSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticKnowledgeSearch(client *elasticsearch.Client, index string) *ElasticKnowledgeSearch {
	return &ElasticKnowledgeSearch{client: client, index: index}
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source SchemeDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticKnowledgeSearch) Lookup(ctx context.Context, query string) ([]SchemeDoc, error) {
	body := map[string]interface{}{
		"size": 5,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"scheme^2", "summary"},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode knowledge query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("knowledge search error: %s", res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode knowledge response: %w", err)
	}

	docs := make([]SchemeDoc, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
