// Command karte runs the clinical document analysis service: an HTTP server
// with directory intake, plus one-shot analysis commands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/config"
	"github.com/karte-health/karte/internal/engine"
	"github.com/karte-health/karte/internal/intake"
	"github.com/karte-health/karte/internal/keyword"
	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/nlp"
	"github.com/karte-health/karte/internal/server"
	"github.com/karte-health/karte/internal/storage"
	"github.com/karte-health/karte/internal/watcher"
	"github.com/karte-health/karte/pkg/utils"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "server":
		err = runServer(os.Args[2:])
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "enhance":
		err = runEnhance(os.Args[2:])
	case "status":
		err = runStatus(os.Args[2:])
	case "version":
		fmt.Println("karte", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`karte - clinical document analysis engine

Usage:
  karte server  [-config path] [-debug]        run the HTTP server with directory intake
  karte analyze [-config path] [-debug] FILE   analyze one document and print the result
  karte enhance [-config path] [-include list] ID
                                               run enhancements for a stored document
  karte status  [-config path]                 print document counts
  karte version                                print the version`)
}

type components struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Storage
	search  *keyword.Index
	service *engine.Service
}

// initializeComponents builds the shared stack behind every subcommand.
func initializeComponents(configPath string, debug bool) (*components, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if debug {
		cfg.Debug = true
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	search, err := keyword.NewIndex(cfg.Storage.BleveIndexPath, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	segmenter := nlp.NewRegexSegmenter()
	tagger := nlp.NewLexiconTagger()
	eng := engine.New(cfg, segmenter, tagger, logger)
	service := engine.NewService(eng, store, search, logger)

	return &components{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		search:  search,
		service: service,
	}, nil
}

func (c *components) close() {
	if err := c.search.Close(); err != nil {
		c.logger.Warn("closing search index", zap.Error(err))
	}
	if err := c.store.Close(); err != nil {
		c.logger.Warn("closing storage", zap.Error(err))
	}
	_ = c.logger.Sync()
}

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)

	c, err := initializeComponents(*configPath, *debug)
	if err != nil {
		return err
	}
	defer c.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(c.cfg, c.service, c.logger)

	if len(c.cfg.Intake.Directories) > 0 {
		reader := intake.NewReader(c.cfg.Intake.Extensions, c.logger)
		w := watcher.New(c.cfg.Intake.Directories, reader, c.service, c.logger)
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("intake watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("analyze requires exactly one file argument")
	}
	path := fs.Arg(0)

	c, err := initializeComponents(*configPath, *debug)
	if err != nil {
		return err
	}
	defer c.close()

	reader := intake.NewReader(c.cfg.Intake.Extensions, c.logger)
	source := reader.Read(path)
	if !source.Success {
		return fmt.Errorf("read %s: %s", path, source.Error)
	}

	doc, analysis, err := c.service.Ingest(context.Background(), documentInput(path, source.Text))
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"document": doc, "analysis": analysis})
}

func runEnhance(args []string) error {
	fs := flag.NewFlagSet("enhance", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	include := fs.String("include", "summary,key_findings",
		"comma-separated enhancements: summary, key_findings, trends, cross_reference")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("enhance requires exactly one document id argument")
	}
	id := fs.Arg(0)

	c, err := initializeComponents(*configPath, false)
	if err != nil {
		return err
	}
	defer c.close()

	var names []string
	for _, n := range strings.Split(*include, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	result, err := c.service.Enhance(context.Background(), id, names)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	c, err := initializeComponents(*configPath, false)
	if err != nil {
		return err
	}
	defer c.close()

	st, err := c.service.Status(context.Background())
	if err != nil {
		return err
	}
	return printJSON(st)
}

func documentInput(path, text string) models.DocumentInput {
	return models.DocumentInput{Title: filepath.Base(path), Content: text}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
