package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/coregx/coregex"
	"gopkg.in/yaml.v3"

	"github.com/shaniidev/jshunt/internal/core"
	"github.com/shaniidev/jshunt/internal/utils"
)

// PatternTemplate is one user supplied pattern in a YAML template file
type PatternTemplate struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Regex        string   `yaml:"regex"`
	Severity     string   `yaml:"severity"`
	Keywords     []string `yaml:"keywords"`
	RequireAll   bool     `yaml:"require_all"`
	EntropyCheck bool     `yaml:"entropy_check"`
	MinEntropy   float64  `yaml:"min_entropy"`
	Tags         []string `yaml:"tags"`
}

type PatternFile struct {
	Name     string            `yaml:"name"`
	Version  string            `yaml:"version"`
	Author   string            `yaml:"author"`
	Patterns []PatternTemplate `yaml:"patterns"`
}

// CompiledPattern wraps a coregex pattern. The lazy DFA inside coregex is
// not safe for concurrent use, so every match takes the pattern's lock.
type CompiledPattern struct {
	ID           string
	Name         string
	Regex        *coregex.Regexp
	RegexString  string
	Severity     core.Severity
	Keywords     []string
	RequireAll   bool
	EntropyCheck bool
	MinEntropy   float64
	Tags         []string
	mu           *sync.Mutex
}

func (p *CompiledPattern) FindAll(content []byte) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	matches := p.Regex.FindAll(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, string(m))
	}
	return out
}

func compileRegex(expr string) (*CompiledPattern, error) {
	re, err := coregex.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return &CompiledPattern{Regex: re, RegexString: expr, mu: &sync.Mutex{}}, nil
}

func mustCompile(expr string) *CompiledPattern {
	p, err := compileRegex(expr)
	if err != nil {
		panic(fmt.Sprintf("scan: %s: %v", expr, err))
	}
	return p
}

func compilePattern(pt PatternTemplate) (*CompiledPattern, error) {
	if pt.Name == "" {
		return nil, errors.New("missing name")
	}
	p, err := compileRegex(pt.Regex)
	if err != nil {
		return nil, err
	}

	severity := core.Severity(strings.ToLower(pt.Severity))
	if severity == "" {
		severity = core.SeverityMedium
	}

	keywords := pt.Keywords
	if len(keywords) == 0 {
		if kw := ExtractKeyword(pt.Regex); IsValidKeyword(kw) {
			keywords = []string{kw}
		}
	}

	p.ID = pt.ID
	p.Name = pt.Name
	p.Severity = severity
	p.Keywords = keywords
	p.RequireAll = pt.RequireAll
	p.EntropyCheck = pt.EntropyCheck
	p.MinEntropy = pt.MinEntropy
	p.Tags = pt.Tags
	return p, nil
}

// LoadTemplates reads custom patterns from a YAML file or from every .yaml /
// .yml file below a directory. Valid patterns are returned even when others
// fail; the error then lists every failure.
func LoadTemplates(path string) ([]*CompiledPattern, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open templates: %w", err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && (strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml")) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk templates directory: %w", err)
		}
	} else {
		files = []string{path}
	}

	var patterns []*CompiledPattern
	var loadErrors []error
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("%s: read error: %w", file, err))
			continue
		}

		var pf PatternFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			loadErrors = append(loadErrors, fmt.Errorf("%s: parse error: %w", file, err))
			continue
		}

		for _, pt := range pf.Patterns {
			compiled, err := compilePattern(pt)
			if err != nil {
				loadErrors = append(loadErrors, fmt.Errorf("%s/%s: %w", filepath.Base(file), pt.ID, err))
				continue
			}
			patterns = append(patterns, compiled)
		}
	}

	return patterns, errors.Join(loadErrors...)
}

// TemplateScanner turns a custom pattern into a scanner
func TemplateScanner(p *CompiledPattern) *Scanner {
	kind := strings.ReplaceAll(p.Name, " ", "")
	return &Scanner{
		Name:       kind,
		Severity:   p.Severity,
		Keywords:   p.Keywords,
		RequireAll: p.RequireAll,
		match: func(content []byte) []map[string]any {
			var out []map[string]any
			for _, m := range p.FindAll(content) {
				if p.EntropyCheck && p.MinEntropy > 0 && utils.CalculateEntropy(m) < p.MinEntropy {
					continue
				}
				data := map[string]any{"matched_string": m}
				if p.ID != "" {
					data["template"] = p.ID
				}
				out = append(out, data)
			}
			return out
		},
	}
}
