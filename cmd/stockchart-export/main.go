// Command stockchart-export renders a price chart to a PNG file without
// opening a window.
package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	"gioui.org/font/gofont"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"git.sr.ht/~whereswaldon/stockchart/backend"
	"git.sr.ht/~whereswaldon/stockchart/chart"
	"git.sr.ht/~whereswaldon/stockchart/config"
)

var version = "dev"

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	rootCmd := &cobra.Command{
		Use:     "stockchart-export",
		Short:   "Render the price history of a stock or fund to a PNG file.",
		Args:    cobra.NoArgs,
		Version: version,
	}
	config.AddFlags(rootCmd.Flags())
	rootCmd.Flags().StringP("output", "o", "", "output path (default SYMBOL-PERIOD.png)")
	rootCmd.Flags().Duration("timeout", 30*time.Second, "maximum time to wait for quote data")

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadFlags(cmd.Flags())
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		output, _ := cmd.Flags().GetString("output")
		return run(cmd.Context(), cfg, output, timeout)
	}

	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}

// source builds the quote source described by cfg. The returned function
// releases any resources it holds.
func source(cfg *config.Config) (backend.Source, func()) {
	opts := cfg.BackendOptions()
	if opts.File != "" {
		return backend.FileSource{Path: opts.File}, func() {}
	}
	var src backend.Source = backend.NewYahooSource(opts.BaseURL, opts.Proxy)
	if opts.CachePath == "" {
		return src, func() {}
	}
	cache, err := backend.OpenCache(opts.CachePath)
	if err != nil {
		log.Printf("continuing without quote cache: %v", err)
		return src, func() {}
	}
	return backend.CachedSource{Source: src, Cache: cache}, func() { cache.Close() }
}

func run(ctx context.Context, cfg *config.Config, output string, timeout time.Duration) error {
	src, release := source(cfg)
	defer release()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	q, err := src.Fetch(fetchCtx, cfg.Symbol, cfg.Period)
	if err != nil {
		return fmt.Errorf("fetch %s %s: %w", cfg.Symbol, cfg.Period, err)
	}
	if q.Stale {
		log.Printf("using cached data for %s from %s", q.Symbol, q.FetchedAt.Format(time.RFC3339))
	}

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	style := chart.DefaultStyle()
	style.Margins = cfg.Margins
	size := image.Pt(cfg.Window.Width, cfg.Window.Height)
	img, err := chart.Export(th, q.Series, style, size, unit.Metric{PxPerDp: 1, PxPerSp: 1})
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	if output == "" {
		output = strings.ReplaceAll(q.Symbol, "/", "_") + "-" + q.Period.String() + ".png"
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := chart.WritePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}
	log.Printf("wrote %d points of %s to %s", len(q.Series), q.Title(), output)
	return nil
}
