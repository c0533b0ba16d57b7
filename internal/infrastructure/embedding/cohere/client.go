// Package cohere implements the EmbeddingProvider and Reranker ports with
// the Cohere v2 API. The reranker is the only cross-encoder backend; leaving
// the API key unset disables both and the scorer renormalizes without them.
package cohere

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/paperlens/originality/internal/core/domain"
)

type Config struct {
	APIKey      string
	EmbedModel  string
	RerankModel string
}

type Client struct {
	api         *cohereclient.Client
	embedModel  string
	rerankModel string
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.WrapError(domain.ErrNotConfigured, "cohere client", fmt.Errorf("api key is empty"))
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "embed-english-v3.0"
	}
	if cfg.RerankModel == "" {
		cfg.RerankModel = "rerank-english-v3.0"
	}

	api := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	)
	return &Client{
		api:         api,
		embedModel:  cfg.EmbedModel,
		rerankModel: cfg.RerankModel,
	}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          []string{text},
		Model:          c.embedModel,
		InputType:      cohere.EmbedInputTypeSearchDocument,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "cohere embed", err)
	}
	if resp == nil || resp.Embeddings == nil || len(resp.Embeddings.Float) == 0 {
		return nil, fmt.Errorf("cohere embed returned no float embeddings")
	}

	raw := resp.Embeddings.Float[0]
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}

// Rerank returns one relevance score per document, aligned by index.
func (c *Client) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	resp, err := c.api.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     c.rerankModel,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "cohere rerank", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("cohere rerank returned empty response")
	}

	scores := make([]float64, len(documents))
	for _, result := range resp.Results {
		if result == nil {
			continue
		}
		idx := result.Index
		if idx < 0 || idx >= len(scores) {
			return nil, fmt.Errorf("cohere rerank index %d out of range", idx)
		}
		scores[idx] = result.RelevanceScore
	}
	return scores, nil
}
