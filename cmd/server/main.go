package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/provider-directory/pkg/api"
	"github.com/hazyhaar/provider-directory/pkg/directory"
	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"github.com/hazyhaar/provider-directory/pkg/metrics"
	"github.com/hazyhaar/provider-directory/pkg/provider"
	"github.com/hazyhaar/provider-directory/pkg/store"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "load":
		cmdLoad(os.Args[2:])
	case "taxonomy":
		cmdTaxonomy(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "runs":
		cmdRuns(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: provider-directory <command> [-config config.yaml]

Commands:
  serve     Start the HTTP API (and /mcp)
  load      Build the catalog from the CMS export, taxonomy and auxiliary sources
  taxonomy  Download the NUCC taxonomy (taxonomy fetch [-force])
  check     Check that every upstream source is reachable
  runs      List recent catalog loads
  export    Write a filtered directory to XLSX
  mcp       Serve the MCP tools over stdio
`)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func mustConfig(path string, logger *slog.Logger) config {
	cfg, found, err := loadConfig(path)
	if err != nil {
		logger.Error("invalid config", "path", path, "error", err)
		os.Exit(1)
	}
	if !found {
		logger.Info("no config file, using defaults", "path", path)
	}
	return cfg
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger(slog.LevelInfo)
	slog.SetDefault(logger)
	cfg := mustConfig(*cfgPath, logger)

	catalog, err := store.OpenSQLite(cfg.Database)
	if err != nil {
		logger.Error("open catalog", "error", err)
		os.Exit(1)
	}
	defer catalog.Close()

	m := metrics.New()
	reg := directory.NewRegistry(func(ctx context.Context) (*provider.Table, error) {
		return catalog.Load(ctx, cfg.Table)
	})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = reg.Load(ctx)
	m.Reloaded(reg.Info().Providers, err)
	if err != nil {
		logger.Error("failed to load catalog", "table", cfg.Table, "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded", "providers", reg.Info().Providers, "coordinates", reg.Info().HasCoordinates)

	eps := api.MakeEndpoints(reg, logger, m)
	mcpSrv := api.NewMCPServer(eps, version)

	opts := api.Options{
		Logger:  logger,
		Metrics: m,
		MCP:     server.NewStreamableHTTPServer(mcpSrv),
	}
	if cfg.RateLimit.RPS > 0 {
		opts.Limiter = api.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, m)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(reg, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Background availability checks of the upstream sources.
	if cfg.CheckInterval > 0 {
		sources, err := ingest.OpenSourceDB(cfg.SourcesDB)
		if err != nil {
			logger.Error("open source db", "error", err)
			os.Exit(1)
		}
		defer sources.Close()
		if err := cfg.seedSources(sources); err != nil {
			logger.Error("seed sources", "error", err)
			os.Exit(1)
		}
		checker := ingest.NewChecker(sources, logger, cfg.CheckInterval)
		checker.OnCheck(func(s ingest.CheckSummary) { m.Checked(s.OK, s.Failed) })
		go checker.Start(ctx)
	}

	// SIGHUP: hot reload the catalog.
	// SIGINT/SIGTERM: graceful shutdown.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading catalog")
			err := reg.Reload(ctx)
			m.Reloaded(reg.Info().Providers, err)
			if err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("catalog reloaded", "providers", reg.Info().Providers)
			}
		}
	}()

	go func() {
		logger.Info("provider directory listening", "addr", cfg.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// cmdMCP serves the directory tools over stdin/stdout. Logs go to stderr.
func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger(slog.LevelWarn)
	cfg := mustConfig(*cfgPath, logger)

	catalog, err := store.OpenSQLite(cfg.Database)
	if err != nil {
		logger.Error("open catalog", "error", err)
		os.Exit(1)
	}
	defer catalog.Close()

	reg := directory.NewRegistry(func(ctx context.Context) (*provider.Table, error) {
		return catalog.Load(ctx, cfg.Table)
	})
	if err := reg.Load(context.Background()); err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	if err := server.ServeStdio(api.NewMCPServer(api.MakeEndpoints(reg, logger, nil), version)); err != nil {
		logger.Error("mcp stdio", "error", err)
		os.Exit(1)
	}
}
