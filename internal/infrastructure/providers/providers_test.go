package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paperlens/originality/internal/core/domain"
)

func TestCrossRefParsesItemsAndStripsMarkup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.bibliographic"); got != "a test sentence" {
			t.Fatalf("unexpected query: %q", got)
		}
		_, _ = w.Write([]byte(`{"message":{"items":[
			{"title":["Paper One"],"abstract":"<jats:p>Plain abstract text.</jats:p>","URL":"https://doi.org/10.1/x","DOI":"10.1/x"},
			{"title":["Title Only"],"abstract":"","URL":"https://doi.org/10.1/y","DOI":"10.1/y"}
		]}}`))
	}))
	defer server.Close()

	provider := NewCrossRef("ops@example.org")
	provider.baseURL = server.URL

	candidates, err := provider.Search(context.Background(), "a test sentence")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Snippet != "Plain abstract text." {
		t.Fatalf("expected stripped abstract, got %q", candidates[0].Snippet)
	}
	if candidates[1].Snippet != "Title Only" {
		t.Fatalf("expected title fallback, got %q", candidates[1].Snippet)
	}
	if candidates[0].Kind != domain.SourceAcademic {
		t.Fatalf("expected academic kind, got %q", candidates[0].Kind)
	}
}

func TestCrossRefMapsServerFaultToTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewCrossRef("")
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "sentence")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestSemanticScholarFallsBackToTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "key-1" {
			t.Fatalf("expected api key header, got %q", got)
		}
		_, _ = w.Write([]byte(`{"data":[{"title":"A Study","abstract":"","url":"https://example.org/p1"}]}`))
	}))
	defer server.Close()

	provider := NewSemanticScholar("key-1")
	provider.baseURL = server.URL

	candidates, err := provider.Search(context.Background(), "sentence")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].Snippet != "A Study" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	if candidates[0].Kind != domain.SourceJournal {
		t.Fatalf("expected journal kind, got %q", candidates[0].Kind)
	}
}

func TestSerperWithoutKeyReportsNotConfigured(t *testing.T) {
	provider := NewSerper("")
	_, err := provider.Search(context.Background(), "sentence")
	if !domain.IsKind(err, domain.ErrNotConfigured) {
		t.Fatalf("expected not-configured error, got %v", err)
	}
}

func TestSerperParsesOrganicResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "key-2" {
			t.Fatalf("expected api key header, got %q", got)
		}
		_, _ = w.Write([]byte(`{"organic":[{"title":"Blog Post","link":"https://blog.example.org","snippet":"matching snippet text"}]}`))
	}))
	defer server.Close()

	provider := NewSerper("key-2")
	provider.baseURL = server.URL

	candidates, err := provider.Search(context.Background(), "sentence")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].Snippet != "matching snippet text" {
		t.Fatalf("unexpected candidates: %+v", candidates)
	}
	if candidates[0].Kind != domain.SourceWeb {
		t.Fatalf("expected web kind, got %q", candidates[0].Kind)
	}
}
