package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"git.sr.ht/~whereswaldon/stockchart/backend"
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
		Use:     "stockchart",
		Short:   "Chart the price history of a stock or fund.",
		Args:    cobra.NoArgs,
		Version: version,
	}
	config.AddFlags(rootCmd.Flags())

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadFlags(cmd.Flags())
		if err != nil {
			return err
		}
		go func() {
			w := app.NewWindow(
				app.Title("Stock price chart"),
				app.Size(unit.Dp(cfg.Window.Width), unit.Dp(cfg.Window.Height)),
			)
			if err := loop(w, cfg); err != nil {
				log.Fatal(err)
			}
			os.Exit(0)
		}()
		app.Main()
		return nil
	}

	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}

func loop(w *app.Window, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bundle, err := backend.NewBundle(ctx, cfg.BackendOptions())
	if err != nil {
		return fmt.Errorf("failed starting backend: %w", err)
	}
	defer bundle.Close()

	ws := backend.NewWindowState(ctx, bundle, w)
	expl := explorer.NewExplorer(w)
	ui := NewUI(ws, w, expl, cfg)

	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
