package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// ErrInvalidURL is returned for URLs without a scheme or host
var ErrInvalidURL = errors.New("invalid url")

// apiPathRe marks REST-looking paths: /api/ or a version segment such as /v2/
var apiPathRe = regexp.MustCompile(`/api/|/v\d+/`)

// Normalize turns a URL reference found in an asset into an absolute URL.
// Protocol-relative references get https, other non-http(s) references are
// resolved against base, anything else is returned unchanged.
func Normalize(raw, base string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(ref).String()
}

// Canonicalizer produces the dedup key for a URL.
type Canonicalizer struct {
	// Purell applies purell's safe normalizations (lowercase host, drop
	// default port, ...) before reassembly.
	Purell bool
}

// Canonicalize reassembles scheme, host, path, query and fragment in a fixed
// order. It does no I/O and Canonicalize(Canonicalize(u)) == Canonicalize(u).
func (c Canonicalizer) Canonicalize(raw string) (string, error) {
	if c.Purell {
		normalized, err := purell.NormalizeURLString(raw, purell.FlagsSafe)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidURL, raw, err)
		}
		raw = normalized
	}
	return Canonicalize(raw)
}

// Canonicalize is Canonicalizer{}.Canonicalize
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	if u.User != nil {
		b.WriteString(u.User.String())
		b.WriteByte('@')
	}
	b.WriteString(u.Host)
	b.WriteString(u.EscapedPath())
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}
	return b.String(), nil
}

// JSMatch selects how a URL is classified as a JavaScript asset
type JSMatch string

const (
	// MatchSuffix: the path ends in .js (case-insensitive). Used for recursion.
	MatchSuffix JSMatch = "suffix"
	// MatchContains: ".js" appears anywhere in the URL. Looser, may recurse
	// into non-JS pages such as /foo.json or /page?x=a.js.
	MatchContains JSMatch = "contains"
)

func ParseJSMatch(s string) (JSMatch, error) {
	switch m := JSMatch(strings.ToLower(s)); m {
	case MatchSuffix, MatchContains:
		return m, nil
	case "":
		return MatchSuffix, nil
	default:
		return "", fmt.Errorf("unknown js match policy %q (want suffix or contains)", s)
	}
}

// IsJS classifies rawURL under the policy
func (m JSMatch) IsJS(rawURL string) bool {
	if m == MatchContains {
		return strings.Contains(strings.ToLower(rawURL), ".js")
	}
	return IsJSAsset(rawURL)
}

// IsJSAsset checks if the URL path ends in .js
func IsJSAsset(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".js")
}

// IsAPIEndpoint reports whether the URL path looks like an API route
func IsAPIEndpoint(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return apiPathRe.MatchString(u.Path)
}
