// Package config loads the YAML batch configuration for a reporting
// run: where output goes and which metric files to analyze with what
// chart settings.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/spc_analyzer_go/internal/spc"
)

// DefaultOutputDir receives charts, JSON results and the PDF report
// when the configuration does not name a directory.
const DefaultOutputDir = "reports"

// Config is the top-level batch configuration.
type Config struct {
	OutputDir string         `yaml:"output_dir"`
	Metrics   []MetricConfig `yaml:"metrics"`
}

// MetricConfig describes one metric to analyze: its display name, the
// CSV file holding its observations and the chart settings.
type MetricConfig struct {
	Name          string `yaml:"name"`
	DataType      string `yaml:"data_type"`
	Input         string `yaml:"input"`
	SigmaLevel    int    `yaml:"sigma_level"`
	BaselineStart string `yaml:"baseline_start"`
	BaselineEnd   string `yaml:"baseline_end"`
}

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	for i := range c.Metrics {
		if c.Metrics[i].SigmaLevel == 0 {
			c.Metrics[i].SigmaLevel = int(spc.Sigma3)
		}
	}
}

// Validate rejects configurations the analysis engine would refuse at
// run time, so mistakes surface before any file is read.
func (c *Config) Validate() error {
	if len(c.Metrics) == 0 {
		return fmt.Errorf("config names no metrics")
	}
	seen := make(map[string]bool)
	artifacts := make(map[string]string)
	for _, m := range c.Metrics {
		if m.Name == "" {
			return fmt.Errorf("every metric needs a name")
		}
		if seen[m.Name] {
			return fmt.Errorf("metric %q is listed twice", m.Name)
		}
		seen[m.Name] = true
		base := ArtifactBase(m.Name)
		if other, ok := artifacts[base]; ok {
			return fmt.Errorf("metrics %q and %q would write the same output files (%s)", other, m.Name, base)
		}
		artifacts[base] = m.Name
		if m.Input == "" {
			return fmt.Errorf("metric %q: input file is required", m.Name)
		}
		if _, err := spc.ChartTypeForDataType(spc.DataType(m.DataType)); err != nil {
			return fmt.Errorf("metric %q: %w", m.Name, err)
		}
		switch spc.SigmaLevel(m.SigmaLevel) {
		case spc.Sigma1, spc.Sigma2, spc.Sigma3:
		default:
			return fmt.Errorf("metric %q: sigma level must be 1, 2 or 3, got %d", m.Name, m.SigmaLevel)
		}
		if m.BaselineStart != "" && m.BaselineEnd != "" && m.BaselineStart > m.BaselineEnd {
			return fmt.Errorf("metric %q: baseline start %q is after baseline end %q", m.Name, m.BaselineStart, m.BaselineEnd)
		}
	}
	return nil
}

// ArtifactBase returns the file-name stem for a metric's output
// artifacts: lowercased, spaces become underscores and anything else
// outside letters, digits, dashes and underscores is dropped. A name
// with no usable characters falls back to "metric". Validate rejects
// configurations where two metric names share a stem.
func ArtifactBase(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if mapped == "" {
		return "metric"
	}
	return strings.ToLower(mapped)
}

// SPCOptions converts the metric's chart settings into engine options.
func (m MetricConfig) SPCOptions() spc.SPCOptions {
	return spc.SPCOptions{
		SigmaLevel:    spc.SigmaLevel(m.SigmaLevel),
		BaselineStart: m.BaselineStart,
		BaselineEnd:   m.BaselineEnd,
	}
}
