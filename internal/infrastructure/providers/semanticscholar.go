package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/paperlens/originality/internal/core/domain"
)

// SemanticScholar covers journals and preprints through the Graph API. It
// works unauthenticated at a low rate; an API key raises the quota.
type SemanticScholar struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSemanticScholar(apiKey string) *SemanticScholar {
	return &SemanticScholar{
		baseURL:    "https://api.semanticscholar.org",
		apiKey:     apiKey,
		httpClient: newHTTPClient(),
	}
}

func (p *SemanticScholar) Name() string            { return "semantic_scholar" }
func (p *SemanticScholar) Kind() domain.SourceKind { return domain.SourceJournal }

func (p *SemanticScholar) Search(ctx context.Context, sentence string) ([]domain.SourceCandidate, error) {
	query := url.Values{}
	query.Set("query", sentence)
	query.Set("limit", strconv.Itoa(maxCandidatesPerProvider))
	query.Set("fields", "title,abstract,url")

	var headers map[string]string
	if p.apiKey != "" {
		headers = map[string]string{"x-api-key": p.apiKey}
	}

	var response struct {
		Data []struct {
			Title    string `json:"title"`
			Abstract string `json:"abstract"`
			URL      string `json:"url"`
		} `json:"data"`
	}
	endpoint := p.baseURL + "/graph/v1/paper/search?" + query.Encode()
	if err := getJSON(ctx, p.httpClient, p.Name(), endpoint, headers, &response); err != nil {
		return nil, err
	}

	var out []domain.SourceCandidate
	for _, paper := range response.Data {
		snippet := paper.Abstract
		if snippet == "" {
			snippet = paper.Title
		}
		if snippet == "" {
			continue
		}
		out = append(out, domain.SourceCandidate{
			Snippet:    snippet,
			SourceURL:  paper.URL,
			SourceName: p.Name(),
			Kind:       p.Kind(),
		})
	}
	return out, nil
}
