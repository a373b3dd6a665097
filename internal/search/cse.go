package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/petems/speech-search/internal/dispatch"
)

// Provider queries Google Custom Search for the spoken utterance.
type Provider struct {
	svc      *customsearch.Service
	engineID string
}

func NewProvider(ctx context.Context, apiKey, engineID string) (*Provider, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}
	return &Provider{svc: svc, engineID: engineID}, nil
}

func (p *Provider) Search(ctx context.Context, query string, count int) ([]dispatch.Result, error) {
	res, err := p.svc.Cse.List().
		Q(query).
		Cx(p.engineID).
		Num(int64(count)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("custom search failed: %w", err)
	}

	results := make([]dispatch.Result, 0, len(res.Items))
	for _, it := range res.Items {
		results = append(results, dispatch.Result{
			Title:   it.Title,
			Link:    it.Link,
			Snippet: it.Snippet,
		})
	}
	return results, nil
}
