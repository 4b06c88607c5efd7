package embeddings

import (
	"context"
	"errors"
)

// ErrProvider marks failures of the remote embedding provider
// (authentication, quota, network). Callers must surface these instead of
// substituting zero vectors: an unanswerable query and a broken provider are
// different situations and must stay distinguishable.
var ErrProvider = errors.New("embedding provider failure")

// Embedder defines the interface for generating text embeddings. The provider
// and model must stay fixed for the lifetime of an index; switching models
// invalidates every stored vector and requires a full re-ingestion.
type Embedder interface {
	// Embed generates embeddings for one or more texts, preserving order
	// and length.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single query string in the same vector space as
	// corpus embedding.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// embedQuery implements EmbedQuery in terms of Embed for providers that have
// no dedicated single-text endpoint.
func embedQuery(ctx context.Context, e Embedder, text string) ([]float32, error) {
	results, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.New("embedder returned no vector for query")
	}
	return results[0], nil
}
