package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"github.com/hazyhaar/provider-directory/pkg/pipeline"
	"github.com/hazyhaar/provider-directory/pkg/validation"
)

type config struct {
	Addr        string `yaml:"addr" validate:"required,hostname_port"`
	Database    string `yaml:"database" validate:"required"`
	SourcesDB   string `yaml:"sources_db" validate:"required"`
	Table       string `yaml:"table" validate:"required,sqlident"`
	PostgresURL string `yaml:"postgres_url" validate:"omitempty,url"`

	Taxonomy struct {
		Path        string `yaml:"path"`
		URL         string `yaml:"url" validate:"omitempty,http_url"`
		ManifestDir string `yaml:"manifest_dir"`
	} `yaml:"taxonomy"`

	Providers struct {
		Path     string `yaml:"path" validate:"required"`
		URL      string `yaml:"url" validate:"omitempty,http_url"`
		Encoding string `yaml:"encoding"`
	} `yaml:"providers"`

	Auxiliary      []pipeline.AuxSource `yaml:"auxiliary" validate:"dive"`
	ComposeAddress bool                 `yaml:"compose_address"`

	RateLimit struct {
		RPS   float64 `yaml:"rps" validate:"gte=0"`
		Burst int     `yaml:"burst" validate:"gte=0"`
	} `yaml:"rate_limit"`

	CheckInterval time.Duration `yaml:"check_interval" validate:"gte=0"`
}

func defaultConfig() config {
	var cfg config
	cfg.Addr = ":8420"
	cfg.Database = "providers.db"
	cfg.SourcesDB = "sources.db"
	cfg.Table = "providers"
	cfg.Taxonomy.Path = "nucc_taxonomy_250.csv"
	cfg.Taxonomy.URL = "https://www.nucc.org/images/stories/CSV/nucc_taxonomy_250.csv"
	cfg.Providers.Path = "DAC_NationalDownloadableFile.csv"
	cfg.RateLimit.RPS = 50
	cfg.RateLimit.Burst = 100
	cfg.CheckInterval = 24 * time.Hour
	return cfg
}

// loadConfig reads path over the defaults. A missing file keeps the defaults.
func loadConfig(path string) (config, bool, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, false, cfg.validate()
		}
		return cfg, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, true, fmt.Errorf("parse config: %w", err)
	}
	return cfg, true, cfg.validate()
}

func (c *config) validate() error {
	return validation.New().Struct(c)
}

func (c *config) pipeline() pipeline.Config {
	return pipeline.Config{
		ProvidersPath:   c.Providers.Path,
		ProvidersURL:    c.Providers.URL,
		ProvidersFormat: ingest.CSVFormat{Encoding: c.Providers.Encoding},
		TaxonomyPath:    c.Taxonomy.Path,
		TaxonomyURL:     c.Taxonomy.URL,
		TaxonomyDir:     c.Taxonomy.ManifestDir,
		Auxiliary:       c.Auxiliary,
		ComposeAddress:  c.ComposeAddress,
		Table:           c.Table,
	}
}

// seedSources registers every configured remote dataset in the source ledger.
func (c *config) seedSources(db *ingest.SourceDB) error {
	if err := db.Seed("providers", "CMS Doctors and Clinicians national downloadable file", c.Providers.URL); err != nil {
		return err
	}
	if err := db.Seed("taxonomy", "NUCC Health Care Provider Taxonomy", c.Taxonomy.URL); err != nil {
		return err
	}
	for _, a := range ingest.All() {
		if err := db.Seed(a.ID(), a.Description(), a.DefaultURL()); err != nil {
			return err
		}
	}
	return nil
}
