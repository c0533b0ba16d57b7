package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paperlens/originality/internal/core/domain"
)

// CrossRef queries the public works index. No credential is required, but
// registering a contact address moves requests into the polite pool.
type CrossRef struct {
	baseURL    string
	mailto     string
	httpClient *http.Client
}

func NewCrossRef(mailto string) *CrossRef {
	return &CrossRef{
		baseURL:    "https://api.crossref.org",
		mailto:     mailto,
		httpClient: newHTTPClient(),
	}
}

func (p *CrossRef) Name() string            { return "crossref" }
func (p *CrossRef) Kind() domain.SourceKind { return domain.SourceAcademic }

func (p *CrossRef) Search(ctx context.Context, sentence string) ([]domain.SourceCandidate, error) {
	query := url.Values{}
	query.Set("query.bibliographic", sentence)
	query.Set("rows", strconv.Itoa(maxCandidatesPerProvider))
	query.Set("select", "title,abstract,URL,DOI")
	if p.mailto != "" {
		query.Set("mailto", p.mailto)
	}

	var response struct {
		Message struct {
			Items []struct {
				Title    []string `json:"title"`
				Abstract string   `json:"abstract"`
				URL      string   `json:"URL"`
				DOI      string   `json:"DOI"`
			} `json:"items"`
		} `json:"message"`
	}
	endpoint := p.baseURL + "/works?" + query.Encode()
	if err := getJSON(ctx, p.httpClient, p.Name(), endpoint, nil, &response); err != nil {
		return nil, err
	}

	var out []domain.SourceCandidate
	for _, item := range response.Message.Items {
		snippet := stripJATS(item.Abstract)
		if snippet == "" && len(item.Title) > 0 {
			snippet = item.Title[0]
		}
		if snippet == "" {
			continue
		}
		out = append(out, domain.SourceCandidate{
			Snippet:    snippet,
			SourceURL:  item.URL,
			SourceName: p.Name(),
			Kind:       p.Kind(),
		})
	}
	return out, nil
}

// stripJATS removes the XML markup CrossRef embeds in abstracts.
func stripJATS(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
