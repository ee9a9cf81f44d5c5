package core

import (
	"sort"
	"strings"
)

// URLRecord is a URL reference discovered inside an asset
type URLRecord struct {
	URL         string   `json:"url"`
	QueryParams []string `json:"queryParams,omitempty"`
	BodyParams  []string `json:"bodyParams,omitempty"`
	Method      string   `json:"method,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// SecretFinding is a credential-like value found in an asset.
// Field order is part of the serialized form and therefore of the dedup key.
type SecretFinding struct {
	Kind         string         `json:"kind"`
	Data         map[string]any `json:"data"`
	Filename     string         `json:"filename"`
	Severity     Severity       `json:"severity"`
	Context      any            `json:"context"`
	OriginalFile string         `json:"original_file"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank orders severities; anything unrecognised ranks below info.
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0
	default:
		return -1
	}
}

// AssetResult is the contribution of one crawled URL and everything below it.
// It is owned by a single goroutine until handed to its parent for merging.
type AssetResult struct {
	URL       string
	Endpoints map[string]URLRecord // canonical non-JS URL -> record
	Secrets   []SecretFinding
	Assets    int // JS assets processed in this subtree
	Failed    int
}

func NewAssetResult(url string) *AssetResult {
	return &AssetResult{
		URL:       url,
		Endpoints: make(map[string]URLRecord),
	}
}

// AddEndpoint records a non-JS URL, merging parameters when it was already seen.
func (r *AssetResult) AddEndpoint(rec URLRecord) {
	existing, ok := r.Endpoints[rec.URL]
	if !ok {
		r.Endpoints[rec.URL] = rec
		return
	}
	existing.QueryParams = unionStrings(existing.QueryParams, rec.QueryParams)
	existing.BodyParams = unionStrings(existing.BodyParams, rec.BodyParams)
	if existing.Method == "" {
		existing.Method = rec.Method
	}
	if existing.Type == "" {
		existing.Type = rec.Type
	}
	r.Endpoints[rec.URL] = existing
}

// Merge folds a child result into r.
func (r *AssetResult) Merge(child *AssetResult) {
	if child == nil {
		return
	}
	for _, rec := range child.Endpoints {
		r.AddEndpoint(rec)
	}
	r.Secrets = append(r.Secrets, child.Secrets...)
	r.Assets += child.Assets
	r.Failed += child.Failed
}

// EndpointURLs returns the non-JS URLs sorted lexicographically
func (r *AssetResult) EndpointURLs() []string {
	urls := make([]string, 0, len(r.Endpoints))
	for u := range r.Endpoints {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
