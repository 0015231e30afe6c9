package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/edugrant/internal/domain/entity"
)

// ScholarshipIndex mirrors scholarships into an Elasticsearch index for full-text search.
type ScholarshipIndex struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
}

func NewScholarshipIndex(es *elasticsearch.Client, index string) *ScholarshipIndex {
	return &ScholarshipIndex{es: es, index: index, timeout: 3 * time.Second}
}

type scholarshipDoc struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	Category    string   `json:"category"`
	DegreeLevel string   `json:"degree_level"`
	Description string   `json:"description"`
	Eligibility []string `json:"eligibility"`
	Amount      float64  `json:"amount"`
	Deadline    string   `json:"deadline"`
	CreatedAt   string   `json:"created_at"`
}

func (x *ScholarshipIndex) Index(ctx context.Context, s *entity.Scholarship) error {
	doc := scholarshipDoc{
		ID:          s.ID,
		Slug:        s.Slug,
		Name:        s.Name,
		Provider:    s.Provider,
		Category:    s.Category,
		DegreeLevel: s.DegreeLevel,
		Description: s.Description,
		Eligibility: s.Eligibility,
		Amount:      s.Amount,
		Deadline:    s.Deadline.Format(entity.DateLayout),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: s.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", s.ID, res.Status())
	}
	return nil
}

func (x *ScholarshipIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match query and returns matching scholarship ids by relevance.
func (x *ScholarshipIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^3", "provider^2", "category", "degree_level", "description", "eligibility"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
