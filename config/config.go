// Package config loads the application configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.sr.ht/~whereswaldon/stockchart/backend"
	"git.sr.ht/~whereswaldon/stockchart/plot"
)

const (
	SourceYahoo = "yahoo"
	SourceFile  = "file"
)

// Config holds all application configuration.
type Config struct {
	Symbol string         `yaml:"symbol"`
	Period backend.Period `yaml:"period"`
	Source struct {
		Kind    string `yaml:"kind"`
		File    string `yaml:"file"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"source"`
	Cache struct {
		Path     string `yaml:"path"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"cache"`
	Window struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"window"`
	Margins plot.Margins `yaml:"margins"`
	Proxy   string       `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKCHART_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("STOCKCHART_PERIOD"); v != "" {
		p, err := backend.ParsePeriod(v)
		if err != nil {
			return nil, fmt.Errorf("STOCKCHART_PERIOD: %w", err)
		}
		cfg.Period = p
	}
	if v := os.Getenv("STOCKCHART_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("STOCKCHART_FILE"); v != "" {
		cfg.Source.File = v
	}
	if v := os.Getenv("STOCKCHART_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("STOCKCHART_CACHE"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Symbol == "" {
		c.Symbol = "0P0001KVR5.F"
	}
	if c.Period == 0 {
		c.Period = backend.PYTD
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceYahoo
		if c.Source.File != "" {
			c.Source.Kind = SourceFile
		}
	}
	c.Source.Kind = strings.ToLower(c.Source.Kind)
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = backend.DefaultYahooURL
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath()
	}
	if c.Window.Width == 0 {
		c.Window.Width = 800
	}
	if c.Window.Height == 0 {
		c.Window.Height = 600
	}
	if c.Margins.Base == 0 {
		c.Margins.Base = plot.DefaultMargins.Base
	}
	if c.Margins.Top == 0 {
		c.Margins.Top = plot.DefaultMargins.Top
	}
	if c.Margins.Bottom == 0 {
		c.Margins.Bottom = plot.DefaultMargins.Bottom
	}
	if c.Margins.LabelPadding == 0 {
		c.Margins.LabelPadding = plot.DefaultMargins.LabelPadding
	}
	if c.Margins.FallbackLeft == 0 {
		c.Margins.FallbackLeft = plot.DefaultMargins.FallbackLeft
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "stockchart.db"
	}
	return filepath.Join(dir, "stockchart", "quotes.db")
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if !c.Period.Valid() {
		return fmt.Errorf("period %v is not supported", c.Period)
	}
	switch c.Source.Kind {
	case SourceYahoo:
	case SourceFile:
		if c.Source.File == "" {
			return fmt.Errorf("source.file is required for the file source")
		}
	default:
		return fmt.Errorf("source.kind %q must be %q or %q", c.Source.Kind, SourceYahoo, SourceFile)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	m := c.Margins
	for name, v := range map[string]float64{
		"base":          m.Base,
		"top":           m.Top,
		"bottom":        m.Bottom,
		"label_padding": m.LabelPadding,
		"fallback_left": m.FallbackLeft,
	} {
		if v < 0 {
			return fmt.Errorf("margins.%s must not be negative", name)
		}
	}
	return nil
}

// BackendOptions returns the options for building the backend.
func (c *Config) BackendOptions() backend.Options {
	opts := backend.Options{
		BaseURL: c.Source.BaseURL,
		Proxy:   c.Proxy,
	}
	if c.Source.Kind == SourceFile {
		opts.File = c.Source.File
	}
	if !c.Cache.Disabled {
		opts.CachePath = c.Cache.Path
	}
	return opts
}
