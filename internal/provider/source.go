package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultMaxCategoryID = 18418

// HTTPSource fetches categories from a clue archive speaking the jservice
// wire format.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	maxID   int
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		maxID:   defaultMaxCategoryID,
	}
}

func (s *HTTPSource) MaxID() int {
	return s.maxID
}

func (s *HTTPSource) Category(ctx context.Context, id int) (*RawCategory, error) {
	url := fmt.Sprintf("%s/api/category?id=%d", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("category %d: status %d", id, resp.StatusCode)
	}

	var raw RawCategory
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("category %d: decode: %w", id, err)
	}
	return &raw, nil
}

// CorpusSource serves categories from memory. Tests use it directly; it also
// backs deployments that ship a local archive dump.
type CorpusSource struct {
	categories map[int]*RawCategory
	maxID      int
}

func NewCorpusSource(categories []*RawCategory) *CorpusSource {
	s := &CorpusSource{categories: make(map[int]*RawCategory)}
	for _, c := range categories {
		s.categories[c.ID] = c
		if c.ID > s.maxID {
			s.maxID = c.ID
		}
	}
	return s
}

func (s *CorpusSource) MaxID() int {
	return s.maxID
}

func (s *CorpusSource) Category(_ context.Context, id int) (*RawCategory, error) {
	c, ok := s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %d: not in corpus", id)
	}
	return c, nil
}
