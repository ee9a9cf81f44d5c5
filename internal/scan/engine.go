package scan

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/shaniidev/jshunt/internal/core"
)

// Scanner is a self-contained rule that inspects raw asset text. Keywords
// are its precondition: any of them must occur, or all of them when
// RequireAll is set. A scanner without keywords always runs.
type Scanner struct {
	Name       string
	Severity   core.Severity
	Keywords   []string
	RequireAll bool
	match      func(content []byte) []map[string]any
}

func (s *Scanner) run(content []byte, sourceURL string) []core.SecretFinding {
	var findings []core.SecretFinding
	seen := make(map[string]bool)
	for _, data := range s.match(content) {
		matched, _ := data["matched_string"].(string)
		if seen[matched] {
			continue
		}
		seen[matched] = true
		findings = append(findings, core.SecretFinding{
			Kind:         s.Name,
			Data:         data,
			Filename:     sourceURL,
			Severity:     s.Severity,
			Context:      nil,
			OriginalFile: sourceURL,
		})
	}
	return findings
}

// Engine runs a set of scanners over an asset. One Aho-Corasick pass over
// the content finds every scanner keyword, and only scanners whose
// precondition holds are run. Safe for concurrent use once built.
type Engine struct {
	matcher     *ahocorasick.Matcher
	scanners    []*Scanner
	keywordOf   map[int][]int // keyword index -> scanners gated by it
	needed      []int         // keywords each scanner needs before it runs
	ungated     []int
	keywordsLen int
}

// NewEngine indexes the scanners' keywords
func NewEngine(scanners []*Scanner) *Engine {
	e := &Engine{
		scanners:  scanners,
		keywordOf: make(map[int][]int),
		needed:    make([]int, len(scanners)),
	}

	var keywords []string
	keywordIdx := make(map[string]int)

	for i, s := range scanners {
		if len(s.Keywords) == 0 {
			e.ungated = append(e.ungated, i)
			continue
		}
		distinct := make(map[string]bool)
		for _, kw := range s.Keywords {
			if distinct[kw] {
				continue
			}
			distinct[kw] = true

			idx, ok := keywordIdx[kw]
			if !ok {
				idx = len(keywords)
				keywords = append(keywords, kw)
				keywordIdx[kw] = idx
			}
			e.keywordOf[idx] = append(e.keywordOf[idx], i)
		}
		e.needed[i] = 1
		if s.RequireAll {
			e.needed[i] = len(distinct)
		}
	}

	e.matcher = ahocorasick.NewStringMatcher(keywords)
	e.keywordsLen = len(keywords)
	return e
}

// Stats reports how many scanners are keyword-indexed and how many run unconditionally
func (e *Engine) Stats() (indexed, keywords, fallback int) {
	return len(e.scanners) - len(e.ungated), e.keywordsLen, len(e.ungated)
}

// Scan runs every scanner whose precondition holds, in registration order.
func (e *Engine) Scan(content []byte, sourceURL string) []core.SecretFinding {
	// ungated scanners need zero hits
	hits := make([]int, len(e.scanners))
	if e.keywordsLen > 0 {
		for _, kwIdx := range e.matcher.MatchThreadSafe(content) {
			for _, i := range e.keywordOf[kwIdx] {
				hits[i]++
			}
		}
	}

	var findings []core.SecretFinding
	for i, s := range e.scanners {
		if hits[i] < e.needed[i] {
			continue
		}
		findings = append(findings, s.run(content, sourceURL)...)
	}
	return findings
}
