package location

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver supplies a human-readable place for a client address. Lookups are
// best-effort: failures degrade to an empty string and never block a caller.
type Resolver interface {
	Resolve(ip string) string
}

// HTTPResolver queries an ip-api style endpoint with a short timeout.
type HTTPResolver struct {
	client  *http.Client
	baseURL string
}

// NewHTTPResolver creates a resolver against the given base URL
// (e.g. "http://ip-api.com").
func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		client:  &http.Client{Timeout: 2 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Resolve returns "City, Country" for the address, or "" on any failure.
func (r *HTTPResolver) Resolve(ip string) string {
	if ip == "" || r.baseURL == "" {
		return ""
	}
	resp, err := r.client.Get(r.baseURL + "/json/" + url.PathEscape(ip))
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body struct {
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}

	parts := make([]string, 0, 2)
	if body.City != "" {
		parts = append(parts, body.City)
	}
	if body.Country != "" {
		parts = append(parts, body.Country)
	}
	return strings.Join(parts, ", ")
}

// Noop resolves every address to nothing. Used when enrichment is disabled
// and in tests.
type Noop struct{}

// Resolve implements Resolver.
func (Noop) Resolve(string) string { return "" }
