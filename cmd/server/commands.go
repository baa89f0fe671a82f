package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/provider-directory/pkg/directory"
	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"github.com/hazyhaar/provider-directory/pkg/kit"
	"github.com/hazyhaar/provider-directory/pkg/pipeline"
	"github.com/hazyhaar/provider-directory/pkg/store"
	"github.com/hazyhaar/provider-directory/pkg/taxonomy"
)

func cmdLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger(slog.LevelInfo)
	slog.SetDefault(logger)
	cfg := mustConfig(*cfgPath, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	catalog, err := store.OpenSQLite(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer catalog.Close()
	sinks := []store.Sink{catalog}

	if cfg.PostgresURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer pg.Close()
		sinks = append(sinks, pg)
	}

	runs, err := ingest.OpenSourceDB(cfg.SourcesDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer runs.Close()

	fmt.Printf("Loading %s into %s (table %s)...\n", cfg.Providers.Path, cfg.Database, cfg.Table)
	rep, err := pipeline.New(cfg.pipeline(), sinks,
		pipeline.WithRuns(runs),
		pipeline.WithLogger(logger),
	).Run(ctx)
	if err != nil {
		if pipeline.IsMissingInput(err) {
			fmt.Fprintln(os.Stderr, "Error: missing input file(s):")
			for _, p := range pipeline.MissingPaths(err) {
				fmt.Fprintf(os.Stderr, "  %s\n", p)
			}
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK run %s: %s\n", rep.RunID, rep.Summary())
	fmt.Println("Send SIGHUP to a running server to pick up the new catalog.")
}

func cmdTaxonomy(args []string) {
	if len(args) == 0 || args[0] != "fetch" {
		fmt.Fprintln(os.Stderr, "Usage: provider-directory taxonomy fetch [-config config.yaml] [-force]")
		os.Exit(1)
	}
	fs := flag.NewFlagSet("taxonomy fetch", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	force := fs.Bool("force", false, "download even when the file exists")
	fs.Parse(args[1:])

	logger := newLogger(slog.LevelInfo)
	cfg := mustConfig(*cfgPath, logger)

	path, url := cfg.Taxonomy.Path, cfg.Taxonomy.URL
	m := taxonomy.DefaultManifest()
	if dir := cfg.Taxonomy.ManifestDir; dir != "" {
		var err error
		if path, m, err = taxonomy.Resolve(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if url == "" {
			url = m.SourceURL
		}
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "Error: no taxonomy URL configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var err error
	downloaded := true
	if *force {
		err = ingest.Download(ctx, url, path)
	} else {
		downloaded, err = ingest.EnsureFile(ctx, path, url)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !downloaded {
		fmt.Printf("%s already present (use -force to refresh)\n", path)
	}

	v, err := taxonomy.Load(path, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if dir := cfg.Taxonomy.ManifestDir; dir != "" {
		m.SourceURL = url
		if err := taxonomy.WriteManifest(filepath.Join(dir, taxonomy.ManifestFile), m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("OK %s: %d specialty terms\n", path, v.Len())
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := newLogger(slog.LevelWarn)
	cfg := mustConfig(*cfgPath, logger)

	sources, err := ingest.OpenSourceDB(cfg.SourcesDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sources.Close()
	if err := cfg.seedSources(sources); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	sum := ingest.NewChecker(sources, logger, time.Hour).CheckAll(ctx)

	list, err := sources.ListSources()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, src := range list {
		status := "-"
		if src.LastStatus != nil {
			status = fmt.Sprintf("%d", *src.LastStatus)
		}
		if src.LastError != nil && *src.LastError != "" {
			status += " " + *src.LastError
		}
		fmt.Printf("  %-10s  %-4s  %s\n", src.ID, status, src.URL)
	}
	fmt.Printf("%d reachable, %d failed\n", sum.OK, sum.Failed)
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func cmdRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	limit := fs.Int("n", 10, "number of runs to show")
	fs.Parse(args)

	cfg := mustConfig(*cfgPath, newLogger(slog.LevelWarn))
	db, err := ingest.OpenSourceDB(cfg.SourcesDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.Runs(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %-7s  rows=%d aux=%d  %s",
			r.ID, time.Unix(r.StartedAt, 0).Format(time.DateTime), r.Status, r.Rows, r.AuxRows, r.ProviderFile)
		if r.Error != nil {
			line += "  error: " + *r.Error
		}
		fmt.Println(line)
	}
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	out := fs.String("out", "providers.xlsx", "output workbook")
	text := fs.String("q", "", "text filter (name, city, specialty)")
	states := fs.String("state", "", "comma-separated state codes")
	specs := fs.String("specialty", "", "primary specialty (repeat with ';')")
	lat := fs.Float64("lat", 0, "latitude of the search centre")
	lon := fs.Float64("lon", 0, "longitude of the search centre")
	radius := fs.Float64("radius", 0, "radius in miles (needs -lat and -lon)")
	fs.Parse(args)

	logger := newLogger(slog.LevelWarn)
	cfg := mustConfig(*cfgPath, logger)

	catalog, err := store.OpenSQLite(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer catalog.Close()

	t, err := catalog.Load(context.Background(), cfg.Table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	q := directory.Query{
		Text:   *text,
		States: kit.SplitList(strings.ToUpper(*states)),
	}
	for _, s := range strings.Split(*specs, ";") {
		if s = strings.TrimSpace(s); s != "" {
			q.Specialties = append(q.Specialties, s)
		}
	}
	if *radius > 0 {
		q.Center = &directory.Point{Lat: *lat, Lon: *lon}
		q.RadiusMiles = *radius
	}

	matches, warning := directory.New(t).Filter(q)
	if warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := directory.ExportXLSX(f, directory.Rows(matches)); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK %d providers written to %s\n", len(matches), *out)
}
