package config

import (
	"fmt"

	"github.com/spf13/pflag"

	"git.sr.ht/~whereswaldon/stockchart/backend"
)

// Overrides are command-line values applied on top of the loaded config.
// Zero fields leave the config untouched.
type Overrides struct {
	Symbol  string
	Period  string
	File    string
	NoCache bool
	Width   int
	Height  int
}

// Apply merges o into c and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.Symbol != "" {
		c.Symbol = o.Symbol
	}
	if o.Period != "" {
		p, err := backend.ParsePeriod(o.Period)
		if err != nil {
			return fmt.Errorf("parse period flag: %w", err)
		}
		c.Period = p
	}
	if o.File != "" {
		c.Source.Kind = SourceFile
		c.Source.File = o.File
	}
	if o.NoCache {
		c.Cache.Disabled = true
	}
	if o.Width > 0 {
		c.Window.Width = o.Width
	}
	if o.Height > 0 {
		c.Window.Height = o.Height
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AddFlags registers the flags read by LoadFlags.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "stockchart.yaml", "path to the YAML config file")
	fs.String("symbol", "", "ticker symbol to chart")
	fs.String("period", "", "history period (1d, 1w, 1mo, 3mo, 6mo, ytd, 1y, 2y, 3y, 5y, max)")
	fs.String("file", "", "chart a local CSV or JSON quote file instead of the network")
	fs.Bool("no-cache", false, "disable the local quote cache")
	fs.Int("width", 0, "chart width (default from config)")
	fs.Int("height", 0, "chart height (default from config)")
}

// LoadFlags loads the config file named by the config flag and applies the
// remaining flags registered by AddFlags.
func LoadFlags(fs *pflag.FlagSet) (*Config, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("parse config flag: %w", err)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	var o Overrides
	o.Symbol, _ = fs.GetString("symbol")
	o.Period, _ = fs.GetString("period")
	o.File, _ = fs.GetString("file")
	o.NoCache, _ = fs.GetBool("no-cache")
	o.Width, _ = fs.GetInt("width")
	o.Height, _ = fs.GetInt("height")
	if err := cfg.Apply(o); err != nil {
		return nil, err
	}
	return cfg, nil
}
