package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/paperlens/originality/internal/core/domain"
)

// Serper searches the open web. It requires an API key; without one every
// call reports domain.ErrNotConfigured and the gateway drops the provider.
type Serper struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSerper(apiKey string) *Serper {
	return &Serper{
		baseURL:    "https://google.serper.dev",
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

func (p *Serper) Name() string            { return "serper" }
func (p *Serper) Kind() domain.SourceKind { return domain.SourceWeb }

func (p *Serper) Search(ctx context.Context, sentence string) ([]domain.SourceCandidate, error) {
	if p.apiKey == "" {
		return nil, domain.WrapError(domain.ErrNotConfigured, "serper search", errors.New("api key is empty"))
	}

	payload, err := json.Marshal(map[string]any{
		"q":   sentence,
		"num": maxCandidatesPerProvider,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal serper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create serper request: %w", err)
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransportError(p.Name(), err)
	}

	var response struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := decodeResponse(resp, p.Name(), &response); err != nil {
		return nil, err
	}

	var out []domain.SourceCandidate
	for _, result := range response.Organic {
		snippet := result.Snippet
		if snippet == "" {
			snippet = result.Title
		}
		if snippet == "" {
			continue
		}
		out = append(out, domain.SourceCandidate{
			Snippet:    snippet,
			SourceURL:  result.Link,
			SourceName: p.Name(),
			Kind:       p.Kind(),
		})
	}
	return out, nil
}
