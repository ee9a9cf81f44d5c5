package fuzz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shaniidev/jshunt/internal/core"
)

// Placeholder marks the position a fuzzer should substitute
const Placeholder = "FUZZ"

// Generate expands endpoint records into FUZZ-marked URLs: the bare URL, one
// URL per query parameter, one with all query parameters, the same for body
// parameters of POST/PUT endpoints (joined with '|'), and one URL per path
// segment. The result is deduplicated and sorted.
func Generate(records []core.URLRecord) []string {
	set := make(map[string]struct{})
	for _, rec := range records {
		for _, u := range forRecord(rec) {
			set[u] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func forRecord(rec core.URLRecord) []string {
	base, rawQuery, _ := strings.Cut(rec.URL, "?")
	base, _, _ = strings.Cut(base, "#")

	queryParams := rec.QueryParams
	if len(queryParams) == 0 {
		queryParams = queryKeys(rawQuery)
	}

	urls := []string{base}

	for _, p := range queryParams {
		urls = append(urls, fmt.Sprintf("%s?%s=%s", base, p, Placeholder))
	}
	if len(queryParams) > 1 {
		urls = append(urls, base+"?"+allParams(queryParams))
	}

	method := strings.ToUpper(rec.Method)
	if method == "POST" || method == "PUT" {
		for _, p := range rec.BodyParams {
			urls = append(urls, fmt.Sprintf("%s|%s=%s", base, p, Placeholder))
		}
		if len(rec.BodyParams) > 1 {
			urls = append(urls, base+"|"+allParams(rec.BodyParams))
		}
	}

	// scheme, empty and host occupy the first three parts
	parts := strings.Split(base, "/")
	for i := 3; i < len(parts); i++ {
		fuzzed := append([]string{}, parts...)
		fuzzed[i] = Placeholder
		urls = append(urls, strings.Join(fuzzed, "/"))
	}

	return urls
}

func allParams(params []string) string {
	return strings.Join(params, "="+Placeholder+"&") + "=" + Placeholder
}

// queryKeys returns the distinct parameter names of a raw query in order
func queryKeys(rawQuery string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, pair := range strings.Split(rawQuery, "&") {
		key, _, _ := strings.Cut(pair, "=")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}
