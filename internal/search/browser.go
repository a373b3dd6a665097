package search

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"github.com/petems/speech-search/internal/dispatch"
)

// Browser opens the query in the default web browser instead of collecting
// results. It always returns an empty result set, so nothing is spoken.
type Browser struct {
	log zerolog.Logger
}

func NewBrowser(log zerolog.Logger) *Browser {
	return &Browser{log: log}
}

func (b *Browser) Search(ctx context.Context, query string, count int) ([]dispatch.Result, error) {
	u := queryURL(query)
	b.log.Info().Str("url", u).Msg("Opening in browser")
	if err := browser.OpenURL(u); err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}
	return nil, nil
}

func queryURL(query string) string {
	return "https://google.com/#q=" + url.QueryEscape(query)
}
