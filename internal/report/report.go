package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/shaniidev/jshunt/internal/core"
	"github.com/shaniidev/jshunt/internal/fuzz"
	"github.com/shaniidev/jshunt/internal/utils"
)

// Mode selects what Write prints
type Mode string

const (
	ModeEndpoints Mode = "endpoints"
	ModeSecrets   Mode = "secrets"
	ModeBoth      Mode = "both"
	ModeAPI       Mode = "api"
	ModeFuzz      Mode = "fuzz"
)

var Modes = []Mode{ModeEndpoints, ModeSecrets, ModeBoth, ModeAPI, ModeFuzz}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (want endpoints, secrets, both, api or fuzz)", s)
}

// Finding is a secret together with its serialized form
type Finding struct {
	core.SecretFinding
	JSON string
}

// Report is the merged, ordered outcome of a run
type Report struct {
	URLs         []string
	APIEndpoints []string
	Secrets      []Finding
	Records      []core.URLRecord // one per URL, in URL order
	Assets       int
	Failed       int
}

// Aggregate merges per-seed results. URLs are deduplicated and sorted.
// Secrets are ordered by descending severity rank then by serialization,
// and identical serializations are kept once.
func Aggregate(results []*core.AssetResult) (*Report, error) {
	all := core.NewAssetResult("")
	for _, r := range results {
		all.Merge(r)
	}

	rep := &Report{
		URLs:   all.EndpointURLs(),
		Assets: all.Assets,
		Failed: all.Failed,
	}
	for _, u := range rep.URLs {
		rep.Records = append(rep.Records, all.Endpoints[u])
		if utils.IsAPIEndpoint(u) {
			rep.APIEndpoints = append(rep.APIEndpoints, u)
		}
	}

	secrets := make([]Finding, 0, len(all.Secrets))
	for _, s := range all.Secrets {
		data, err := s.Serialize()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s finding: %w", s.Kind, err)
		}
		secrets = append(secrets, Finding{SecretFinding: s, JSON: data})
	}
	sort.SliceStable(secrets, func(i, j int) bool {
		ri, rj := secrets[i].Severity.Rank(), secrets[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return secrets[i].JSON < secrets[j].JSON
	})

	seen := make(map[string]bool, len(secrets))
	for _, s := range secrets {
		if seen[s.JSON] {
			continue
		}
		seen[s.JSON] = true
		rep.Secrets = append(rep.Secrets, s)
	}
	return rep, nil
}

// Write renders the report for mode. Unless silent, lines carry a
// "URL: ", "API Endpoint: " or "Secret: " prefix.
func Write(w io.Writer, rep *Report, mode Mode, silent bool) error {
	bw := bufio.NewWriter(w)
	line := func(prefix, s string) {
		if !silent {
			bw.WriteString(prefix)
		}
		bw.WriteString(s)
		bw.WriteByte('\n')
	}

	switch mode {
	case ModeFuzz:
		for _, u := range fuzz.Generate(rep.Records) {
			bw.WriteString(u)
			bw.WriteByte('\n')
		}
		return bw.Flush()
	case ModeEndpoints, ModeBoth, ModeAPI:
		for _, u := range rep.URLs {
			line("URL: ", u)
		}
	}

	if mode == ModeAPI {
		for _, u := range rep.APIEndpoints {
			line("API Endpoint: ", u)
		}
	}

	if mode == ModeSecrets || mode == ModeBoth {
		for _, s := range rep.Secrets {
			line("Secret: ", s.JSON)
		}
	}
	return bw.Flush()
}

// Summary is a one-line description of the run for stderr
func (r *Report) Summary() string {
	return fmt.Sprintf("%d assets processed, %d failed, %d URLs (%d API endpoints), %d secrets",
		r.Assets, r.Failed, len(r.URLs), len(r.APIEndpoints), len(r.Secrets))
}
