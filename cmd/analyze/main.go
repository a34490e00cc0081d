// Command analyze scores a single text from the command line and prints the JSON result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"CrediScan/internal/domain/models"
	domsvc "CrediScan/internal/domain/service"
	"CrediScan/internal/services/analytics"
	"CrediScan/internal/services/features"
	"CrediScan/internal/services/news"
	"CrediScan/internal/services/scoring"
	"CrediScan/internal/usecase"
	"CrediScan/pkg/config"
	applogger "CrediScan/pkg/logger"
)

type options struct {
	Config   string `short:"c" long:"config" env:"CREDISCAN_CONFIG" description:"config file path (built-in defaults when empty)"`
	Offline  bool   `long:"offline" description:"skip news feeds; relevance is scored against nothing"`
	Model    string `short:"m" long:"model" choice:"lexical" choice:"http" choice:"none" description:"override model.backend"`
	ModelURL string `long:"model-url" description:"override model.url"`
	File     string `short:"f" long:"file" description:"read the text from a file instead of arguments or stdin"`
	URL      string `short:"u" long:"url" description:"source URL recorded on the result"`
	Pretty   bool   `short:"p" long:"pretty" description:"indent the JSON output"`
	Verbose  bool   `short:"v" long:"verbose" description:"log progress to stderr"`

	Args struct {
		Text []string `positional-arg-name:"text"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		if errors.Is(err, models.ErrEmptyText) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(opts options, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}

	text, err := readText(opts, stdin)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg, opts.Offline, log)
	if err != nil {
		return err
	}

	res, err := svc.Analyze(context.Background(), text, opts.URL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.LoadWithEnv(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.Model != "" {
		cfg.Model.Backend = opts.Model
	}
	if opts.ModelURL != "" {
		cfg.Model.URL = opts.ModelURL
		if opts.Model == "" {
			cfg.Model.Backend = "http"
		}
	}
	if opts.Offline {
		cfg.News.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func readText(opts options, stdin io.Reader) (string, error) {
	switch {
	case opts.File != "":
		b, err := os.ReadFile(opts.File)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", opts.File, err)
		}
		return string(b), nil
	case len(opts.Args.Text) > 0:
		return strings.Join(opts.Args.Text, " "), nil
	default:
		b, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
}

func buildService(cfg *config.Config, offline bool, log *applogger.Logger) (*usecase.AnalysisService, error) {
	lex, err := features.LoadLexicon(cfg.Analysis.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Model.Timeout)
	defer cancel()
	pred := analytics.Load(ctx, cfg.Model, log, nil)

	var rel domsvc.RelevanceChecker
	if !offline && cfg.News.Enabled {
		rel = news.NewTracker(cfg.News, news.NewRSSSources(cfg.News), news.WithLogger(log))
	}

	return usecase.NewAnalysisService(
		features.NewExtractor(lex),
		rel,
		pred,
		scoring.NewScorer(cfg.Analysis.Weights),
		usecase.WithAnalysisTimeout(cfg.Analysis.Timeout),
		usecase.WithAnalysisLogger(log),
	), nil
}
