package scan

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shaniidev/jshunt/internal/core"
)

const (
	DefaultNucleiTemplates = "file/keys"
	DefaultNucleiExclude   = "credential-exposure-file"
)

// AuxScanner is a generic key scanner run against the scratch copy of an asset
type AuxScanner interface {
	Scan(ctx context.Context, scratchPath, sourceURL string) ([]core.SecretFinding, error)
}

// Nuclei runs nuclei file templates against a single file
type Nuclei struct {
	Bin       string
	Templates string
	Exclude   string
	Log       logrus.FieldLogger
}

func NewNuclei(bin, templates, exclude string, log logrus.FieldLogger) *Nuclei {
	if bin == "" {
		bin = "nuclei"
	}
	if templates == "" {
		templates = DefaultNucleiTemplates
	}
	if exclude == "" {
		exclude = DefaultNucleiExclude
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Nuclei{Bin: bin, Templates: templates, Exclude: exclude, Log: log}
}

// nucleiResult is the subset of a nuclei -jsonl line jshunt reads
type nucleiResult struct {
	Info *struct {
		Name     string `json:"name"`
		Severity string `json:"severity"`
	} `json:"info"`
	TemplateID       string   `json:"template-id"`
	MatchedAt        string   `json:"matched-at"`
	ExtractedResults []string `json:"extracted-results"`
}

func (n *Nuclei) Scan(ctx context.Context, scratchPath, sourceURL string) ([]core.SecretFinding, error) {
	cmd := exec.CommandContext(ctx, n.Bin,
		"-target", scratchPath,
		"-t", n.Templates,
		"-eid", n.Exclude,
		"-jsonl",
	)
	lines, runErr := runLines(cmd)
	if runErr != nil {
		return nil, &AdapterError{Tool: "nuclei", Mode: n.Templates, Err: runErr.err, Stderr: runErr.stderr}
	}

	var findings []core.SecretFinding
	for _, line := range lines {
		parsed, err := ParseNucleiLine([]byte(line), sourceURL)
		if err != nil {
			n.Log.WithField("url", sourceURL).Warnf("nuclei: %v", err)
			continue
		}
		findings = append(findings, parsed...)
	}
	return findings, nil
}

// ParseNucleiLine maps one nuclei result to one finding per extracted value.
// Results without info or extracted-results yield nothing.
func ParseNucleiLine(line []byte, sourceURL string) ([]core.SecretFinding, error) {
	var res nucleiResult
	if err := core.JSON.Unmarshal(line, &res); err != nil {
		return nil, &DecodeError{Line: string(line), Err: err}
	}
	if res.Info == nil || res.ExtractedResults == nil {
		return nil, nil
	}
	if res.Info.Name == "" {
		return nil, &DecodeError{Line: string(line), Err: errors.New("missing info.name")}
	}

	kind := "Nuclei_" + strings.ReplaceAll(res.Info.Name, " ", "")
	findings := make([]core.SecretFinding, 0, len(res.ExtractedResults))
	for _, key := range res.ExtractedResults {
		findings = append(findings, core.SecretFinding{
			Kind: kind,
			Data: map[string]any{
				"key":        key,
				"template":   res.TemplateID,
				"matched-at": res.MatchedAt,
			},
			Filename:     sourceURL,
			Severity:     core.Severity(res.Info.Severity),
			Context:      nil,
			OriginalFile: sourceURL,
		})
	}
	return findings, nil
}
