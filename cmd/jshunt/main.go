package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/shaniidev/jshunt/internal/config"
	"github.com/shaniidev/jshunt/internal/crawl"
	"github.com/shaniidev/jshunt/internal/discovery"
	"github.com/shaniidev/jshunt/internal/download"
	"github.com/shaniidev/jshunt/internal/report"
	"github.com/shaniidev/jshunt/internal/scan"
	"github.com/shaniidev/jshunt/internal/ui"
	"github.com/shaniidev/jshunt/internal/utils"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

// run returns the process exit code: 2 for bad configuration, 1 for
// unreadable input or unwritable output, 0 otherwise.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		ui.Error("%v", err)
		return 2
	}

	log := ui.RunLogger(ui.NewLogger(cfg.Verbose))

	if !cfg.Silent {
		ui.Banner(version)
		checkDependencies(cfg)
	}

	engine := buildEngine(cfg, log)

	seeds, err := readSeeds(cfg.InputFile, stdin)
	if err != nil {
		ui.Error("%v", err)
		return 1
	}
	if len(seeds) == 0 && !cfg.Silent {
		ui.Warning("No seed URLs given")
	}

	var aux scan.AuxScanner
	if cfg.Nuclei {
		aux = scan.NewNuclei(cfg.NucleiBin, cfg.NucleiTemplates, cfg.NucleiExclude, log)
	}
	analyzer := scan.NewAnalyzer(scan.NewJSluice(cfg.ExtractorBin), engine, aux, log)

	crawler := crawl.New(download.NewClient(cfg.FetchOptions()), analyzer, crawl.Options{
		Concurrency:    cfg.Concurrency,
		JSMatch:        cfg.JSMatch,
		Canonicalizer:  utils.Canonicalizer{Purell: cfg.Normalize},
		SkipThirdParty: cfg.SkipThirdParty,
	}, log)

	showProgress := cfg.Verbose && !cfg.Silent
	var tracker *ui.Tracker
	if showProgress {
		tracker = ui.NewTracker("[crawl]")
		crawler.OnProgress = func(s crawl.Snapshot) {
			tracker.Update(s.Processed, s.Discovered, s.Failed)
		}
	}

	start := time.Now()
	results := crawler.Run(ctx, seeds)
	if tracker != nil {
		s := crawler.Stats()
		tracker.Done(s.Processed, s.Discovered, s.Failed)
	}

	rep, err := report.Aggregate(results)
	if err != nil {
		ui.Error("%v", err)
		return 1
	}

	if err := writeReport(cfg, rep, stdout); err != nil {
		ui.Error("%v", err)
		return 1
	}

	if showProgress {
		ui.Success("%s in %s", rep.Summary(), time.Since(start).Round(time.Millisecond))
		if len(rep.APIEndpoints) > 0 {
			ui.PrintTable(rep.APIEndpoints, "API Endpoints", 20)
		}
	}
	return 0
}

func buildEngine(cfg *config.Config, log logrus.FieldLogger) *scan.Engine {
	scanners := scan.BuiltinScanners()

	if cfg.TemplatesPath != "" {
		start := time.Now()
		patterns, err := scan.LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			log.Warnf("custom templates: %v", err)
			if !cfg.Silent {
				ui.Warning("Some custom patterns could not be loaded (run with -v for details)")
			}
		}
		for _, p := range patterns {
			scanners = append(scanners, scan.TemplateScanner(p))
		}
		if !cfg.Silent && len(patterns) > 0 {
			ui.Success("Loaded %d custom patterns in %v", len(patterns), time.Since(start).Round(time.Microsecond))
		}
	}

	engine := scan.NewEngine(scanners)
	indexed, keywords, fallback := engine.Stats()
	log.Debugf("pattern engine: %d scanners indexed by %d keywords, %d always run", indexed, keywords, fallback)
	return engine
}

func readSeeds(path string, stdin io.Reader) ([]string, error) {
	if path == "" {
		return discovery.ReadSeeds(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return discovery.ReadSeeds(f)
}

func writeReport(cfg *config.Config, rep *report.Report, stdout io.Writer) error {
	if cfg.OutputFile == "" {
		return report.Write(stdout, rep, cfg.Mode, cfg.Silent)
	}

	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		return err
	}
	if err := report.Write(f, rep, cfg.Mode, cfg.Silent); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func checkDependencies(cfg *config.Config) {
	tools := []string{cfg.ExtractorBin}
	if cfg.Nuclei {
		tools = append(tools, cfg.NucleiBin)
	}

	var missing []string
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		ui.Warning("The following tools were not found in PATH:")
		for _, m := range missing {
			ui.Warning("  - %s", m)
		}
		ui.Warning("Assets will still be scanned with the built-in patterns.")
	}
}
