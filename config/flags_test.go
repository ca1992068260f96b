package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"git.sr.ht/~whereswaldon/stockchart/backend"
)

func TestLoadFlags(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	for _, tc := range []struct {
		name    string
		args    []string
		check   func(*Config) bool
		wantErr bool
	}{
		{
			name:  "defaults",
			check: func(c *Config) bool { return c.Period == backend.PYTD && c.Source.Kind == SourceYahoo },
		},
		{
			name:  "symbol and period",
			args:  []string{"--symbol", "AAPL", "--period", "5Y"},
			check: func(c *Config) bool { return c.Symbol == "AAPL" && c.Period == backend.P5Y },
		},
		{
			name: "file switches source",
			args: []string{"--file", "/tmp/msft.csv", "--no-cache"},
			check: func(c *Config) bool {
				return c.Source.Kind == SourceFile && c.Source.File == "/tmp/msft.csv" && c.Cache.Disabled
			},
		},
		{
			name:  "size",
			args:  []string{"--width", "1200", "--height", "300"},
			check: func(c *Config) bool { return c.Window.Width == 1200 && c.Window.Height == 300 },
		},
		{
			name:    "bad period",
			args:    []string{"--period", "fortnight"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("stockchart", pflag.ContinueOnError)
			AddFlags(fs)
			if err := fs.Parse(append([]string{"--config", missing}, tc.args...)); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFlags(fs)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !tc.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestApplyValidates(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Source.Kind = "bloomberg"
	if err := cfg.Apply(Overrides{Symbol: "AAPL"}); err == nil {
		t.Errorf("expected an invalid source to fail validation")
	}
}
