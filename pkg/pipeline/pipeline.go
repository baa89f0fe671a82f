// Package pipeline runs a catalog load: read the CMS export and the
// taxonomy, normalize, merge the auxiliary sources and replace the catalog
// tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"github.com/hazyhaar/provider-directory/pkg/metrics"
	"github.com/hazyhaar/provider-directory/pkg/provider"
	"github.com/hazyhaar/provider-directory/pkg/store"
	"github.com/hazyhaar/provider-directory/pkg/taxonomy"
)

// AuxSource is an auxiliary provider source joined onto the base table.
type AuxSource struct {
	ID      string `yaml:"id" validate:"required"`
	Path    string `yaml:"path"`
	JoinKey string `yaml:"join_key"`
}

// Config describes one load.
type Config struct {
	ProvidersPath   string
	ProvidersURL    string
	ProvidersFormat ingest.CSVFormat

	TaxonomyPath string
	TaxonomyURL  string
	// TaxonomyDir holds manifest.yaml and the data file; it wins over
	// TaxonomyPath when set.
	TaxonomyDir string

	Auxiliary      []AuxSource
	ComposeAddress bool
	Table          string
}

// Report summarizes a finished load.
type Report struct {
	RunID      string
	Rows       int
	AuxRows    int
	Columns    []string
	Vocabulary int
	Duration   time.Duration
}

// Pipeline loads the catalog into its sinks.
type Pipeline struct {
	cfg     Config
	sinks   []store.Sink
	runs    *ingest.SourceDB
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRuns records every load in the load_runs ledger.
func WithRuns(db *ingest.SourceDB) Option { return func(p *Pipeline) { p.runs = db } }

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// WithMetrics reports load size and duration.
func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

// New creates a pipeline writing to sinks.
func New(cfg Config, sinks []store.Sink, opts ...Option) *Pipeline {
	if cfg.Table == "" {
		cfg.Table = "providers"
	}
	p := &Pipeline{cfg: cfg, sinks: sinks, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run performs a full load and records it. A missing input aborts before
// anything is transformed or written.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	var runID string
	if p.runs != nil {
		id, err := p.runs.StartRun(p.cfg.ProvidersPath)
		if err != nil {
			return nil, err
		}
		runID = id
	}

	table, rep, err := p.Build(ctx)
	if err == nil {
		err = p.write(ctx, table)
	}

	if rep == nil {
		rep = &Report{}
	}
	rep.RunID = runID
	rep.Duration = time.Since(start)

	if p.runs != nil {
		if ferr := p.runs.FinishRun(runID, rep.Rows, rep.AuxRows, err); ferr != nil {
			p.logger.Error("record load run", "run", runID, "error", ferr)
		}
	}
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.LoadedRows.Set(float64(rep.Rows))
		p.metrics.LoadDuration.Observe(rep.Duration.Seconds())
	}
	p.logger.Info("catalog written",
		"run", runID, "table", p.cfg.Table, "rows", rep.Rows, "aux_rows", rep.AuxRows,
		"columns", len(rep.Columns), "duration", rep.Duration.Round(time.Millisecond))
	return rep, nil
}

// Build produces the merged table without writing it.
func (p *Pipeline) Build(ctx context.Context) (*provider.Table, *Report, error) {
	taxPath, manifest, err := p.resolveTaxonomy()
	if err != nil {
		return nil, nil, err
	}

	p.fetch(ctx, taxPath, p.taxonomyURL(manifest))
	p.fetch(ctx, p.cfg.ProvidersPath, p.cfg.ProvidersURL)

	required := []string{p.cfg.ProvidersPath, taxPath}
	for _, a := range p.cfg.Auxiliary {
		if a.Path != "" {
			required = append(required, a.Path)
		}
	}
	var missing []error
	for _, path := range required {
		if err := ingest.RequireFile(path); err != nil {
			missing = append(missing, err)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.Join(missing...)
	}

	vocab, err := taxonomy.Load(taxPath, manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("load taxonomy: %w", err)
	}
	p.logger.Info("taxonomy loaded", "path", taxPath, "terms", vocab.Len())

	sheet, err := ingest.ReadCSV(p.cfg.ProvidersPath, p.cfg.ProvidersFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("read providers: %w", err)
	}
	p.logger.Info("providers read", "path", p.cfg.ProvidersPath, "rows", sheet.Len(), "columns", len(sheet.Header))

	var opts []provider.Option
	if p.cfg.ComposeAddress {
		opts = append(opts, provider.WithFullAddress(true))
	}
	table := provider.NewNormalizer(vocab, opts...).NormalizeSheet(sheet)

	rep := &Report{Vocabulary: vocab.Len()}
	for _, src := range p.cfg.Auxiliary {
		key := strings.ToLower(strings.TrimSpace(src.JoinKey))
		if key == "" {
			key = provider.FieldNPI
		}
		aux, err := loadAux(ctx, src, key, keyValues(table, key))
		if err != nil {
			return nil, nil, fmt.Errorf("auxiliary source %s: %w", src.ID, err)
		}
		table = provider.Merge(table, []*ingest.Sheet{aux}, key)
		rep.AuxRows += aux.Len()
		p.logger.Info("auxiliary source merged", "source", src.ID, "rows", aux.Len(), "key", key)
	}

	rep.Rows = table.Len()
	rep.Columns = table.Columns
	return table, rep, nil
}

func (p *Pipeline) write(ctx context.Context, t *provider.Table) error {
	if len(p.sinks) == 0 {
		return errors.New("no catalog sink configured")
	}
	for _, s := range p.sinks {
		if err := s.Replace(ctx, p.cfg.Table, t); err != nil {
			return fmt.Errorf("write catalog: %w", err)
		}
	}
	return nil
}

// resolveTaxonomy returns the taxonomy data file and its manifest.
func (p *Pipeline) resolveTaxonomy() (string, *taxonomy.Manifest, error) {
	if p.cfg.TaxonomyDir == "" {
		return p.cfg.TaxonomyPath, taxonomy.DefaultManifest(), nil
	}
	return taxonomy.Resolve(p.cfg.TaxonomyDir)
}

func (p *Pipeline) taxonomyURL(m *taxonomy.Manifest) string {
	if p.cfg.TaxonomyURL != "" {
		return p.cfg.TaxonomyURL
	}
	if p.cfg.TaxonomyDir != "" {
		return m.SourceURL
	}
	return ""
}

// fetch downloads a missing input when a URL is known. Failures are left
// to the missing-input check.
func (p *Pipeline) fetch(ctx context.Context, path, url string) {
	if path == "" || url == "" || ingest.RequireFile(path) == nil {
		return
	}
	p.logger.Info("downloading input", "path", path, "url", url)
	if _, err := ingest.EnsureFile(ctx, path, url); err != nil {
		p.logger.Warn("download failed", "path", path, "error", err)
	}
}

// keyValues collects the non-null values of the key column in t.
func keyValues(t *provider.Table, key string) map[string]struct{} {
	out := make(map[string]struct{}, t.Len())
	for i := range t.Records {
		if v := t.Records[i].Get(key); v != nil {
			out[strings.TrimSpace(*v)] = struct{}{}
		}
	}
	return out
}

// loadAux reads src through its registered adapter, or as a plain CSV when
// no adapter has that id.
func loadAux(ctx context.Context, src AuxSource, key string, keys map[string]struct{}) (*ingest.Sheet, error) {
	if a, err := ingest.Get(src.ID); err == nil {
		return a.Load(ctx, src.Path, key, keys)
	}
	if src.Path == "" {
		return &ingest.Sheet{ID: src.ID}, nil
	}
	s, err := ingest.ReadCSV(src.Path, ingest.CSVFormat{})
	if err != nil {
		return nil, err
	}
	s.ID = src.ID
	return s, nil
}

// IsMissingInput reports whether err is (or joins) a missing-input failure.
func IsMissingInput(err error) bool {
	return errors.Is(err, ingest.ErrMissingInput)
}

// MissingPaths lists the paths named by missing-input failures in err.
func MissingPaths(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		var fe *ingest.FileError
		if errors.As(e, &fe) && errors.Is(fe, ingest.ErrMissingInput) {
			out = append(out, fe.Path)
		}
	}
	walk(err)
	return out
}

// Summary renders the report on one line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d providers, %d auxiliary rows, %d columns [%s]",
		r.Rows, r.AuxRows, len(r.Columns), strings.Join(r.Columns, ", "))
}
