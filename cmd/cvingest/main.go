// Package main is the cvingest CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/cvingest/internal/batch"
	"github.com/hyperjump/cvingest/internal/cache"
	"github.com/hyperjump/cvingest/internal/cli"
	"github.com/hyperjump/cvingest/internal/config"
	"github.com/hyperjump/cvingest/internal/parser"
	"github.com/hyperjump/cvingest/internal/pipeline"
	"github.com/hyperjump/cvingest/internal/report"
	"github.com/hyperjump/cvingest/internal/server"
	"github.com/hyperjump/cvingest/internal/watcher"
	"github.com/hyperjump/cvingest/pkg/utils"
)

var version = "dev"

// errRejected marks a run whose output was written but whose input failed.
var errRejected = errors.New("rejected")

// loadConfig loads config from path. With no path it uses config.yaml or
// config.toml from the current directory when present, and otherwise defaults
// plus INGESTION_* environment variables. Returns the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			for _, name := range []string{"config.yaml", "config.toml"} {
				candidate := filepath.Join(cwd, name)
				if _, statErr := os.Stat(candidate); statErr == nil {
					path = candidate
					break
				}
			}
		}
	}
	if path == "" {
		cfg, err := config.FromEnv()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// env bundles what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	cache  cache.Cache
	pipe   *pipeline.Pipeline
}

// setup loads config, builds the logger and opens the cache. verbose forces a
// real logger; otherwise one is built only in debug mode.
func setup(configPath string, debug, verbose bool) (*env, error) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	debugMode := cfg.Debug || debug
	logger := zap.NewNop()
	if debugMode || verbose {
		logger, err = utils.NewLogger(debugMode)
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	c, err := cache.Open(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		cache:  c,
		pipe:   pipeline.New(cfg, c, pipeline.WithLogger(logger)),
	}, nil
}

func (e *env) Close() {
	_ = e.cache.Close()
	_ = e.logger.Sync()
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(args, os.Stdout)
	case "batch":
		err = runBatch(args, os.Stdout, os.Stderr)
	case "watch":
		err = runWatch(args)
	case "server":
		err = runServer(args)
	case "cache":
		err = runCache(args, os.Stdout)
	case "config":
		err = runConfig(args, os.Stdout)
	case "version", "--version", "-v":
		fmt.Printf("cvingest version %s (parser %s)\n", version, parser.Version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if errors.Is(err, errRejected) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// reorderArgs moves flags that follow positional arguments to the front so
// "cvingest parse cv.pdf -format json" works like the flag-first form.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runParse(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	format := fs.String("format", "text", "output format: text or json")
	strict := fs.Bool("strict", false, "exit with status 2 when the record fails validation")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: cvingest parse [flags] <file>")
	}
	f, err := cli.ParseFormat(*format)
	if err != nil {
		return err
	}
	e, err := setup(*configPath, *debug, false)
	if err != nil {
		return err
	}
	defer e.Close()

	path := fs.Arg(0)
	res, err := e.pipe.ProcessFile(context.Background(), path)
	o := pipeline.Outcome(path, res, err)
	if werr := cli.WriteOutcome(out, o, f); werr != nil {
		return werr
	}
	if err != nil || (*strict && !o.Valid) {
		return errRejected
	}
	return nil
}

func runBatch(args []string, out, progress io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	recursive := fs.Bool("recursive", false, "search subdirectories")
	workers := fs.Int("workers", 0, "worker count (default from config)")
	format := fs.String("format", "text", "output format: text or json")
	xlsx := fs.String("xlsx", "", "also write an XLSX report to this path")
	start := fs.Int("start", 0, "index of the first file when -size is set")
	size := fs.Int("size", 0, "process only this many files starting at -start")
	info := fs.Bool("info", false, "describe the batch without processing it")
	check := fs.Bool("check", false, "check files without processing them")
	quiet := fs.Bool("quiet", false, "do not report progress")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: cvingest batch [flags] <dir>")
	}
	f, err := cli.ParseFormat(*format)
	if err != nil {
		return err
	}
	e, err := setup(*configPath, *debug, false)
	if err != nil {
		return err
	}
	defer e.Close()

	paths, err := batch.FindFiles(fs.Arg(0), *recursive)
	if err != nil {
		return err
	}
	coord := batch.NewFromConfig(e.cfg.Batch, e.pipe, batch.WithLogger(e.logger))
	switch {
	case *info:
		return cli.WriteBatchInfo(out, coord.Info(paths), f)
	case *check:
		return cli.WriteCheckSummary(out, coord.ValidateFiles(paths), f)
	}

	opts := batch.Options{Workers: *workers}
	if !*quiet {
		opts.OnProgress = func(done, total int, path string) {
			fmt.Fprintf(progress, "[%d/%d] %s\n", done, total, path)
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rep *batch.Report
	if *size > 0 {
		rep, err = coord.ProcessBatch(ctx, paths, *start, *size, opts)
	} else {
		rep, err = coord.ProcessFiles(ctx, paths, opts)
	}
	if rep == nil {
		return err
	}
	if werr := cli.WriteReport(out, rep, f); werr != nil {
		return werr
	}
	if *xlsx != "" {
		if xerr := report.WriteXLSX(*xlsx, rep.Outcomes); xerr != nil {
			return xerr
		}
	}
	return err
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	outputDir := fs.String("output", "", "directory for JSON outcomes (default from config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}
	e, err := setup(*configPath, *debug, true)
	if err != nil {
		return err
	}
	defer e.Close()

	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = e.cfg.Watch.Directories
	}
	if len(dirs) == 0 {
		return errors.New("usage: cvingest watch [flags] <dir>... (or set watch.directories)")
	}
	out := *outputDir
	if out == "" {
		out = e.cfg.Watch.OutputDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w, err := startWatcher(ctx, e, dirs, out)
	if err != nil {
		return err
	}
	<-ctx.Done()
	e.logger.Info("shutting down")
	w.Stop()
	return nil
}

// startWatcher watches dirs, writing one JSON outcome per résumé to outDir,
// and ingests the files already present.
func startWatcher(ctx context.Context, e *env, dirs []string, outDir string) (*watcher.Watcher, error) {
	if outDir == "" {
		outDir = "parsed"
	}
	sink, err := watcher.NewJSONSink(e.pipe, outDir, e.logger)
	if err != nil {
		return nil, err
	}
	w := watcher.New(dirs, sink,
		watcher.WithRecursive(e.cfg.Watch.RecursiveOrDefault()),
		watcher.WithLogger(e.logger),
	)
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	w.Scan()
	return w, nil
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	e, err := setup(*configPath, *debug, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(e.cfg.Watch.Directories) > 0 {
		w, err := startWatcher(ctx, e, e.cfg.Watch.Directories, e.cfg.Watch.OutputDir)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := server.NewServer(e.pipe, e.cfg, e.logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func runCache(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("usage: cvingest cache <info|clear> [flags]")
	}
	sub := args[0]
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	format := fs.String("format", "text", "output format: text or json")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	f, err := cli.ParseFormat(*format)
	if err != nil {
		return err
	}
	e, err := setup(*configPath, false, false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()
	switch sub {
	case "info":
		info, err := e.cache.Info(ctx)
		if err != nil {
			return err
		}
		return cli.WriteCacheInfo(out, info, f)
	case "clear":
		n, err := e.cache.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d cache entries\n", n)
		return nil
	default:
		return fmt.Errorf("unknown cache subcommand: %s", sub)
	}
}

func runConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path")
	initPath := fs.String("init", "", "write the default config to this path (.yaml or .toml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *initPath != "" {
		if _, err := os.Stat(*initPath); err == nil {
			return fmt.Errorf("%s already exists", *initPath)
		}
		if err := config.Save(*initPath, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", *initPath)
		return nil
	}
	cfg, resolved, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if resolved == "" {
		resolved = "defaults + environment"
	}
	fmt.Fprintf(out, "# source: %s\n", resolved)
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `cvingest - Résumé ingestion pipeline

Usage:
  cvingest parse [flags] <file>        Parse one PDF or DOCX résumé
  cvingest batch [flags] <dir>         Parse every résumé in a directory
  cvingest watch [flags] [dir...]      Parse résumés as they arrive
  cvingest server [flags]              Start the HTTP upload API
  cvingest cache <info|clear> [flags]  Inspect or empty the extraction cache
  cvingest config [flags]              Print the effective configuration
  cvingest version                     Show version
  cvingest help                        Show this help

Common Flags:
  --config string   Config file (.yaml or .toml; default ./config.yaml if present)
  --debug           Enable debug logging

Parse Flags:
  --format string   Output format: text or json (default: text)
  --strict          Exit with status 2 when validation fails

Batch Flags:
  --recursive       Search subdirectories
  --workers int     Worker count (default: config batch.max_workers when multiprocessing is on, else 1)
  --format string   Output format: text or json
  --xlsx string     Also write an XLSX report
  --start, --size   Process one slice of the sorted file list
  --info            Describe the batch without processing it
  --check           Check existence, format and size only

Watch Flags:
  --output string   Directory for JSON outcomes (default: config watch.output_dir, else ./parsed)

Config Flags:
  --init string     Write the default configuration to a new file

Examples:
  cvingest parse resume.pdf
  cvingest parse --format json resume.docx
  cvingest batch --recursive --workers 4 --xlsx report.xlsx ./resumes
  cvingest watch ./inbox --output ./parsed
  cvingest cache info`)
}
