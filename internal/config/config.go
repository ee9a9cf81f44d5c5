package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shaniidev/jshunt/internal/download"
	"github.com/shaniidev/jshunt/internal/report"
	"github.com/shaniidev/jshunt/internal/scan"
	"github.com/shaniidev/jshunt/internal/utils"
)

// EnvPrefix namespaces environment overrides, e.g. JSHUNT_CONCURRENCY
const EnvPrefix = "JSHUNT"

type Config struct {
	Mode    report.Mode
	Verbose bool
	Nuclei  bool // run nuclei on every asset as well
	Silent  bool // no banner, no summary, no line prefixes

	Concurrency  int // simultaneous fetch+analyze; 0 = unbounded
	Timeout      time.Duration
	Retries      int
	MaxBodyBytes int64
	UserAgent    string

	JSMatch        utils.JSMatch
	Normalize      bool // purell safe normalization before canonicalizing
	SkipThirdParty bool

	ExtractorBin    string
	NucleiBin       string
	NucleiTemplates string
	NucleiExclude   string
	TemplatesPath   string // custom YAML patterns, file or directory

	InputFile  string // seeds; empty = stdin
	OutputFile string // report; empty = stdout
	ConfigFile string
}

func NewConfig() *Config {
	return &Config{
		Mode:            report.ModeBoth,
		Concurrency:     20,
		Timeout:         download.DefaultTimeout,
		Retries:         download.DefaultRetries,
		MaxBodyBytes:    download.DefaultMaxBodyBytes,
		UserAgent:       download.DefaultUserAgent,
		JSMatch:         utils.MatchSuffix,
		ExtractorBin:    "jsluice",
		NucleiBin:       "nuclei",
		NucleiTemplates: scan.DefaultNucleiTemplates,
		NucleiExclude:   scan.DefaultNucleiExclude,
	}
}

// FlagSet declares every option with its default
func FlagSet() *pflag.FlagSet {
	d := NewConfig()
	fs := pflag.NewFlagSet("jshunt", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("mode", "m", string(d.Mode), "What to hunt for: endpoints, secrets, both, api or fuzz")
	fs.BoolP("verbose", "v", false, "Verbose diagnostics and run summary on stderr")
	fs.BoolP("nuclei", "n", false, "Use nuclei for additional secret detection")
	fs.BoolP("silent", "s", false, "Silent mode (no banner, no line prefixes)")

	fs.IntP("concurrency", "c", d.Concurrency, "Maximum simultaneous downloads (0 = unbounded)")
	fs.Duration("timeout", d.Timeout, "Per-request timeout")
	fs.Int("retries", d.Retries, "Retries on transport errors and 429/503/504")
	fs.Int64("max-body-bytes", d.MaxBodyBytes, "Maximum asset size in bytes")
	fs.String("user-agent", d.UserAgent, "User-Agent header")

	fs.String("js-match", string(d.JSMatch), "JS asset classification: suffix or contains")
	fs.Bool("normalize", false, "Apply safe URL normalization before deduplication")
	fs.Bool("skip-third-party", false, "Do not crawl well-known third-party libraries")

	fs.String("jsluice-bin", d.ExtractorBin, "Path to the jsluice binary")
	fs.String("nuclei-bin", d.NucleiBin, "Path to the nuclei binary")
	fs.String("nuclei-templates", d.NucleiTemplates, "Nuclei templates to run")
	fs.String("nuclei-exclude", d.NucleiExclude, "Nuclei template ids to exclude")
	fs.StringP("templates", "t", "", "Custom secret pattern YAML file or directory")

	fs.StringP("list", "l", "", "File with seed URLs (default stdin)")
	fs.StringP("output", "o", "", "Write the report to a file (default stdout)")
	fs.String("config", "", "YAML config file")
	return fs
}

// Load resolves the configuration from args, JSHUNT_* environment
// variables and an optional config file, in that order of precedence.
func Load(args []string) (*Config, error) {
	fs := FlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// resolved here so the policy in effect is the one validated
	jsMatch := utils.JSMatch(v.GetString("js-match"))
	if m, err := utils.ParseJSMatch(string(jsMatch)); err == nil {
		jsMatch = m
	}

	cfg := &Config{
		Mode:            report.Mode(v.GetString("mode")),
		Verbose:         v.GetBool("verbose"),
		Nuclei:          v.GetBool("nuclei"),
		Silent:          v.GetBool("silent"),
		Concurrency:     v.GetInt("concurrency"),
		Timeout:         v.GetDuration("timeout"),
		Retries:         v.GetInt("retries"),
		MaxBodyBytes:    v.GetInt64("max-body-bytes"),
		UserAgent:       v.GetString("user-agent"),
		JSMatch:         jsMatch,
		Normalize:       v.GetBool("normalize"),
		SkipThirdParty:  v.GetBool("skip-third-party"),
		ExtractorBin:    v.GetString("jsluice-bin"),
		NucleiBin:       v.GetString("nuclei-bin"),
		NucleiTemplates: v.GetString("nuclei-templates"),
		NucleiExclude:   v.GetString("nuclei-exclude"),
		TemplatesPath:   v.GetString("templates"),
		InputFile:       v.GetString("list"),
		OutputFile:      v.GetString("output"),
		ConfigFile:      v.GetString("config"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := report.ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if _, err := utils.ParseJSMatch(string(c.JSMatch)); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max-body-bytes must not be negative, got %d", c.MaxBodyBytes))
	}
	if c.ExtractorBin == "" {
		errs = append(errs, errors.New("jsluice-bin must not be empty"))
	}
	return errors.Join(errs...)
}

// FetchOptions maps the network settings onto the download client
func (c *Config) FetchOptions() download.Options {
	return download.Options{
		Timeout:      c.Timeout,
		Retries:      c.Retries,
		MaxBodyBytes: c.MaxBodyBytes,
		UserAgent:    c.UserAgent,
	}
}
