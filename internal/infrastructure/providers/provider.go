// Package providers implements the SourceProvider port against the external
// reference corpora: CrossRef for published scholarship, Semantic Scholar
// for journal and preprint coverage, and Serper for the open web. Each
// provider maps transient upstream faults to domain.ErrTemporary so the
// gateway retries them; a missing credential maps to domain.ErrNotConfigured
// and disables the provider for the process.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paperlens/originality/internal/core/domain"
)

const maxCandidatesPerProvider = 5

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 8 * time.Second}
}

func decodeResponse(resp *http.Response, provider string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("%s status %s: %s", provider, resp.Status, strings.TrimSpace(string(raw)))
		if isRetryableStatus(resp.StatusCode) {
			return domain.WrapError(domain.ErrTemporary, provider+" search", err)
		}
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", provider, err)
	}
	return nil
}

func wrapTransportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	// Connection resets and timeouts from the http client are all worth a
	// retry; anything permanent surfaces as a status code instead.
	return domain.WrapError(domain.ErrTemporary, provider+" search", err)
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func getJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", provider, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return wrapTransportError(provider, err)
	}
	return decodeResponse(resp, provider, out)
}
