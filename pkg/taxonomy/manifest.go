package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"gopkg.in/yaml.v3"
)

// Manifest describes a taxonomy release: where it came from and how to read it.
type Manifest struct {
	ID        string     `yaml:"id" json:"id"`
	Version   string     `yaml:"version" json:"version"`
	Source    string     `yaml:"source" json:"source"`
	SourceURL string     `yaml:"source_url" json:"source_url,omitempty"`
	License   string     `yaml:"license" json:"license"`
	DataFile  string     `yaml:"data_file" json:"data_file"`
	Format    FormatSpec `yaml:"format" json:"-"`
}

// FormatSpec describes the CSV layout of the taxonomy file.
type FormatSpec struct {
	ingest.CSVFormat     `yaml:",inline"`
	ClassificationColumn string `yaml:"classification_column"`
	SpecializationColumn string `yaml:"specialization_column"`
}

// DefaultManifest matches the NUCC Health Care Provider Taxonomy CSV.
func DefaultManifest() *Manifest {
	return &Manifest{
		ID:        "nucc-taxonomy",
		Source:    "National Uniform Claim Committee",
		SourceURL: "https://www.nucc.org/images/stories/CSV/nucc_taxonomy_250.csv",
		License:   "NUCC",
		DataFile:  "nucc_taxonomy_250.csv",
		Format: FormatSpec{
			ClassificationColumn: "Classification",
			SpecializationColumn: "Specialization",
		},
	}
}

// LoadManifest reads and parses a manifest.yaml file. Missing fields fall
// back to DefaultManifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m := DefaultManifest()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	return m, nil
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ManifestFile is the manifest name inside a taxonomy directory.
const ManifestFile = "manifest.yaml"

// Resolve returns the data file and manifest of a taxonomy directory.
// Without a manifest the NUCC defaults are used.
func Resolve(dir string) (string, *Manifest, error) {
	m := DefaultManifest()
	manifestPath := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(manifestPath); err == nil {
		if m, err = LoadManifest(manifestPath); err != nil {
			return "", nil, err
		}
	}
	return filepath.Join(dir, m.DataFile), m, nil
}
