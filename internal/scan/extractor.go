package scan

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Mode selects what the extractor reports
type Mode string

const (
	ModeURLs    Mode = "urls"
	ModeSecrets Mode = "secrets"
)

// Extractor statically analyses a JS file on disk and returns its raw
// newline-delimited output. sourceURL is the URL the file was fetched from.
type Extractor interface {
	Extract(ctx context.Context, mode Mode, scratchPath, sourceURL string) ([]string, error)
}

// AdapterError is returned when an external tool cannot be started or exits
// abnormally.
type AdapterError struct {
	Tool   string
	Mode   string
	Err    error
	Stderr string
}

func (e *AdapterError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, e.Mode, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *AdapterError) Unwrap() error { return e.Err }

// JSluice runs the jsluice binary
type JSluice struct {
	Bin string
}

func NewJSluice(bin string) *JSluice {
	if bin == "" {
		bin = "jsluice"
	}
	return &JSluice{Bin: bin}
}

// Extract runs `jsluice <mode> -R <sourceURL> <scratchPath>`
func (j *JSluice) Extract(ctx context.Context, mode Mode, scratchPath, sourceURL string) ([]string, error) {
	cmd := exec.CommandContext(ctx, j.Bin, string(mode), "-R", sourceURL, scratchPath)
	lines, err := runLines(cmd)
	if err != nil {
		return nil, &AdapterError{Tool: "jsluice", Mode: string(mode), Err: err.err, Stderr: err.stderr}
	}
	return lines, nil
}

type runError struct {
	err    error
	stderr string
}

// runLines executes cmd and splits its stdout into non-empty lines
func runLines(cmd *exec.Cmd) ([]string, *runError) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &runError{err: err, stderr: strings.TrimSpace(stderr.String())}
	}

	var lines []string
	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, &runError{err: fmt.Errorf("failed to read output: %w", err)}
	}
	return lines, nil
}
