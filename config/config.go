package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dasnellings/dnamerge/merge"
	"github.com/dasnellings/dnamerge/output"
	"github.com/dasnellings/dnamerge/snp"
)

// Config holds merge settings loaded from dnamerge.yml. Command line flags
// override these values.
type Config struct {
	// Output is the target dialect. Empty picks one from the inputs.
	Output                  string            `yaml:"output,omitempty"`
	OutputDir               string            `yaml:"outputDir,omitempty"`
	FillMissing             bool              `yaml:"fillMissing,omitempty"`
	Resolution              string            `yaml:"resolution,omitempty"`
	AllowMultibase          bool              `yaml:"allowMultibase,omitempty"`
	IncludeInvalidPositions bool              `yaml:"includeInvalidPositions,omitempty"`
	Compress                bool              `yaml:"compress,omitempty"`
	WriteLog                bool              `yaml:"writeLog"`
	Formats                 map[string]string `yaml:"formats,omitempty"`
}

func Default() *Config {
	return &Config{
		OutputDir:  ".",
		Resolution: merge.Priority.String(),
		WriteLog:   true,
	}
}

// Load reads dnamerge.yml or dnamerge.yaml from dir on top of Default.
// A missing file is not an error.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"dnamerge.yml", "dnamerge.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return cfg, nil
	}
	return Default(), nil
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	if c.Output != "" {
		if _, err := output.ParseDialect(c.Output); err != nil {
			return err
		}
	}
	if _, err := merge.ParseResolution(c.Resolution); err != nil {
		return err
	}
	for file, f := range c.Formats {
		format, err := snp.ParseFormat(f)
		if err != nil {
			return fmt.Errorf("format for %s: %w", file, err)
		}
		if format == snp.Unknown {
			return fmt.Errorf("format for %s: %q is not a parseable format", file, f)
		}
	}
	return nil
}
