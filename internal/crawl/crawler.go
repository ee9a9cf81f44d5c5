package crawl

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/shaniidev/jshunt/internal/core"
	"github.com/shaniidev/jshunt/internal/discovery"
	"github.com/shaniidev/jshunt/internal/download"
	"github.com/shaniidev/jshunt/internal/scan"
	"github.com/shaniidev/jshunt/internal/utils"
)

// Fetcher downloads one URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*download.Asset, error)
}

type Options struct {
	// Concurrency bounds simultaneous fetch+analyze work; 0 means unbounded.
	Concurrency    int
	JSMatch        utils.JSMatch
	Canonicalizer  utils.Canonicalizer
	SkipThirdParty bool
}

// Snapshot is a point-in-time copy of the crawl counters
type Snapshot struct {
	Discovered int64
	Processed  int64
	Failed     int64
}

// Crawler walks the JS reference graph from a set of seeds. Every URL is
// fetched at most once per run; each call's results are merged into its
// parent only after all of its children have returned.
type Crawler struct {
	fetcher  Fetcher
	analyzer *scan.Analyzer
	opts     Options
	log      logrus.FieldLogger
	frontier *Frontier
	sem      chan struct{}

	discovered atomic.Int64
	processed  atomic.Int64
	failed     atomic.Int64

	// OnProgress, when set, is called after every processed asset
	OnProgress func(Snapshot)
}

func New(fetcher Fetcher, analyzer *scan.Analyzer, opts Options, log logrus.FieldLogger) *Crawler {
	if opts.JSMatch == "" {
		opts.JSMatch = utils.MatchSuffix
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Crawler{
		fetcher:  fetcher,
		analyzer: analyzer,
		opts:     opts,
		log:      log,
		frontier: NewFrontier(),
	}
	if opts.Concurrency > 0 {
		c.sem = make(chan struct{}, opts.Concurrency)
	}
	return c
}

func (c *Crawler) Stats() Snapshot {
	return Snapshot{
		Discovered: c.discovered.Load(),
		Processed:  c.processed.Load(),
		Failed:     c.failed.Load(),
	}
}

// Frontier exposes the visited set, mostly for tests and summaries
func (c *Crawler) Frontier() *Frontier {
	return c.frontier
}

// Run crawls every seed concurrently and returns one result per accepted
// seed, in input order. Invalid and repeated seeds are skipped.
func (c *Crawler) Run(ctx context.Context, seeds []string) []*core.AssetResult {
	var claimed []string
	for _, seed := range seeds {
		canon, err := c.opts.Canonicalizer.Canonicalize(seed)
		if err != nil {
			c.log.WithField("url", seed).Warnf("skipping seed: %v", err)
			continue
		}
		if !c.frontier.Claim(canon) {
			continue
		}
		c.discovered.Add(1)
		claimed = append(claimed, canon)
	}

	return c.dispatch(ctx, claimed)
}

// dispatch processes already-claimed URLs concurrently and waits for all of them
func (c *Crawler) dispatch(ctx context.Context, urls []string) []*core.AssetResult {
	results := make([]*core.AssetResult, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = c.process(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return results
}

func (c *Crawler) acquire() {
	if c.sem != nil {
		c.sem <- struct{}{}
	}
}

func (c *Crawler) release() {
	if c.sem != nil {
		<-c.sem
	}
}

// process expands a single claimed URL and everything reachable below it
func (c *Crawler) process(ctx context.Context, url string) *core.AssetResult {
	log := c.log.WithField("url", url)
	res := core.NewAssetResult(url)

	// the slot is held for fetch+analyze only, never across recursion
	c.acquire()
	base, refs, secrets, ok := c.expand(ctx, url, log)
	c.release()

	if !ok {
		res.Failed = 1
		c.failed.Add(1)
		c.progress()
		return res
	}
	res.Assets = 1
	res.Secrets = secrets
	c.processed.Add(1)

	var children []string
	for _, rec := range refs {
		canon, err := c.opts.Canonicalizer.Canonicalize(utils.Normalize(rec.URL, base))
		if err != nil {
			log.Debugf("dropping reference %q: %v", rec.URL, err)
			continue
		}
		rec.URL = canon

		if !c.opts.JSMatch.IsJS(canon) {
			res.AddEndpoint(rec)
			continue
		}
		if c.opts.SkipThirdParty && utils.ShouldSkipThirdPartyJS(canon) {
			log.Debugf("skipping third-party script %s", canon)
			continue
		}
		if c.frontier.Claim(canon) {
			c.discovered.Add(1)
			children = append(children, canon)
		}
	}
	c.progress()

	for _, child := range c.dispatch(ctx, children) {
		res.Merge(child)
	}
	return res
}

// expand fetches url and returns its raw URL references and secrets.
// References resolve against base, the URL that actually served the
// asset after redirects.
func (c *Crawler) expand(ctx context.Context, url string, log logrus.FieldLogger) (string, []core.URLRecord, []core.SecretFinding, bool) {
	asset, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warnf("fetch failed: %v", err)
		return "", nil, nil, false
	}
	base := url
	if asset.FinalURL != "" && asset.FinalURL != url {
		log.Debugf("redirected to %s", asset.FinalURL)
		base = asset.FinalURL
	}
	log.Debugf("fetched %s (HTTP %d)", download.FormatSize(int64(len(asset.Body))), asset.StatusCode)

	var refs []core.URLRecord
	if discovery.IsHTML(asset.ContentType, asset.Body) {
		sources, err := discovery.ScriptSources(asset.Body)
		if err != nil {
			log.Debugf("html parse: %v", err)
		}
		for _, src := range sources {
			refs = append(refs, core.URLRecord{URL: src, Type: "script"})
		}
	}

	if c.analyzer == nil {
		return base, refs, nil, true
	}
	analysis := c.analyzer.Analyze(ctx, url, asset.Body)
	return base, append(refs, analysis.URLs...), analysis.Secrets, true
}

func (c *Crawler) progress() {
	if c.OnProgress != nil {
		c.OnProgress(c.Stats())
	}
}
