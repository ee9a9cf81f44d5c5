package scan

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/shaniidev/jshunt/internal/core"
	"github.com/shaniidev/jshunt/internal/download"
)

// Analysis is everything found in one asset
type Analysis struct {
	URLs    []core.URLRecord
	Secrets []core.SecretFinding
}

// Analyzer runs the extractor, the pattern engine and the optional auxiliary
// scanner over a single asset.
type Analyzer struct {
	Extractor Extractor
	Engine    *Engine
	Aux       AuxScanner // nil disables the auxiliary scan
	Log       logrus.FieldLogger
}

func NewAnalyzer(extractor Extractor, engine *Engine, aux AuxScanner, log logrus.FieldLogger) *Analyzer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{Extractor: extractor, Engine: engine, Aux: aux, Log: log}
}

// Analyze never fails: extractor, decode and scratch errors are logged and
// only shrink the result.
func (a *Analyzer) Analyze(ctx context.Context, sourceURL string, content []byte) *Analysis {
	log := a.Log.WithField("url", sourceURL)
	res := &Analysis{}

	// one scratch copy serves every external tool for this asset
	err := WithScratch(download.ScratchPattern(sourceURL), content, func(path string) error {
		if a.Extractor != nil {
			for _, mode := range []Mode{ModeURLs, ModeSecrets} {
				lines, err := a.Extractor.Extract(ctx, mode, path, sourceURL)
				if err != nil {
					log.Warnf("extractor: %v", err)
					continue
				}
				a.collect(res, lines, sourceURL, log)
			}
		}

		if a.Aux != nil {
			findings, err := a.Aux.Scan(ctx, path, sourceURL)
			if err != nil {
				log.Warnf("auxiliary scan: %v", err)
			}
			res.Secrets = append(res.Secrets, findings...)
		}
		return nil
	})
	if err != nil {
		log.Warnf("skipping external tools: %v", err)
	}

	if a.Engine != nil {
		res.Secrets = append(res.Secrets, a.Engine.Scan(content, sourceURL)...)
	}
	return res
}

func (a *Analyzer) collect(res *Analysis, lines []string, sourceURL string, log logrus.FieldLogger) {
	for _, line := range lines {
		rec, err := ParseRecord([]byte(line))
		if err != nil {
			log.Debugf("dropping extractor line: %v", err)
			continue
		}
		switch {
		case rec.URL != nil:
			res.URLs = append(res.URLs, *rec.URL)
		case rec.Secret != nil:
			s := *rec.Secret
			// the extractor only ever saw the scratch path
			s.Filename = sourceURL
			s.OriginalFile = sourceURL
			res.Secrets = append(res.Secrets, s)
		}
	}
}
