package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadSeeds reads newline-delimited seed URLs. Blank lines and exact
// duplicates are skipped; input order is kept.
func ReadSeeds(r io.Reader) ([]string, error) {
	var seeds []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return seeds, fmt.Errorf("failed to read seeds: %w", err)
	}
	return seeds, nil
}

// IsHTML reports whether a fetched body is an HTML document rather than script
func IsHTML(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "javascript") || strings.Contains(ct, "ecmascript") || strings.Contains(ct, "json") {
		return false
	}
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}

	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// ScriptSources returns the raw script references of an HTML page in document
// order: <script src>, modulepreload links and script preloads.
func ScriptSources(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var sources []string
	seen := make(map[string]bool)
	add := func(src string) {
		src = strings.TrimSpace(src)
		if src == "" || seen[src] || strings.HasPrefix(strings.ToLower(src), "data:") {
			return
		}
		seen[src] = true
		sources = append(sources, src)
	}

	doc.Find(`script[src], link[rel="modulepreload"][href], link[rel="preload"][as="script"][href]`).Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			add(src)
			return
		}
		if href, ok := s.Attr("href"); ok {
			add(href)
		}
	})
	return sources, nil
}
