package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strings"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/dustin/go-humanize"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/stockchart/backend"
	"git.sr.ht/~whereswaldon/stockchart/chart"
	"git.sr.ht/~whereswaldon/stockchart/config"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var (
	loadIcon    = mustIcon(icons.NavigationRefresh)
	openIcon    = mustIcon(icons.FileFolderOpen)
	exportIcon  = mustIcon(icons.ContentSave)
	networkIcon = mustIcon(icons.FileCloudDownload)
)

func mustIcon(data []byte) *widget.Icon {
	icon, _ := widget.NewIcon(data)
	return icon
}

func newTheme() *material.Theme {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return th
}

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   backend.WindowState
	win  *app.Window
	expl *explorer.Explorer
	th   *material.Theme

	chart      *chart.Chart
	symbol     component.TextField
	period     widget.Enum
	loadBtn    widget.Clickable
	openBtn    widget.Clickable
	exportBtn  widget.Clickable
	networkBtn widget.Clickable

	results *stream.Stream[backend.Result]
	quote   backend.Quote
	status  string
	failed  bool
	// events carries work finished by dialog goroutines back to the
	// event loop.
	events chan func()
}

func NewUI(ws backend.WindowState, win *app.Window, expl *explorer.Explorer, cfg *config.Config) *UI {
	ui := &UI{
		ws:      ws,
		win:     win,
		expl:    expl,
		th:      newTheme(),
		chart:   chart.NewChart(),
		period:  widget.Enum{Value: cfg.Period.String()},
		results: stream.New(ws.Controller, ws.Loader.Stream),
		events:  make(chan func(), 4),
	}
	ui.chart.Style.Margins = cfg.Margins
	ui.symbol.SingleLine = true
	ui.symbol.Submit = true
	ui.symbol.SetText(cfg.Symbol)
	ui.request()
	return ui
}

// request asks the loader for the symbol and period currently selected.
func (ui *UI) request() {
	p, err := backend.ParsePeriod(ui.period.Value)
	if err != nil {
		log.Printf("ignoring period selection: %v", err)
		return
	}
	ui.ws.Loader.Request(backend.Request{
		Symbol: strings.TrimSpace(ui.symbol.Text()),
		Period: p,
	})
}

// post runs f on the event loop goroutine during the next frame.
func (ui *UI) post(f func()) {
	ui.events <- f
	ui.win.Invalidate()
}

func (ui *UI) apply(r backend.Result) {
	if !ui.ws.Loader.IsLatest(r.Seq) {
		return
	}
	ui.failed = false
	switch {
	case r.Loading:
		ui.status = "Loading " + r.Request.String() + "…"
	case r.Err != nil:
		ui.failed = true
		ui.status = fmt.Sprintf("Failed loading %s: %v", r.Request, r.Err)
	default:
		ui.quote = r.Quote
		ui.chart.Load(r.Quote.Series)
		ui.win.Option(app.Title(r.Quote.Title()))
		ui.status = ""
		if r.Quote.Stale {
			ui.status = "Offline: showing data cached " + humanize.Time(r.Quote.FetchedAt)
		}
	}
}

// Update the state of the UI in response to input and backend results.
func (ui *UI) Update(gtx C) {
	if r, ok := ui.results.ReadNew(gtx); ok {
		ui.apply(r)
	}
	for drained := false; !drained; {
		select {
		case f := <-ui.events:
			f()
		default:
			drained = true
		}
	}

	submitted := false
	for {
		ev, ok := ui.symbol.Editor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			submitted = true
		}
	}
	if ui.period.Update(gtx) {
		submitted = true
	}
	if ui.loadBtn.Clicked(gtx) {
		submitted = true
	}
	if submitted {
		ui.request()
	}
	if ui.networkBtn.Clicked(gtx) && ui.ws.FollowingFile() {
		ui.ws.UseNetwork()
		ui.request()
	}
	if ui.openBtn.Clicked(gtx) {
		go ui.chooseFile()
	}
	if ui.exportBtn.Clicked(gtx) {
		ui.export()
	}
}

func (ui *UI) chooseFile() {
	f, err := ui.expl.ChooseFile("csv", "json")
	if err != nil {
		if !errors.Is(err, explorer.ErrUserDecline) {
			ui.post(func() { ui.fail("Failed choosing file: %v", err) })
		}
		return
	}
	defer f.Close()
	osFile, ok := f.(*os.File)
	if !ok {
		ui.post(func() { ui.fail("Cannot follow the chosen file on this platform") })
		return
	}
	path := osFile.Name()
	ui.post(func() {
		if err := ui.ws.OpenFile(path); err != nil {
			ui.fail("%v", err)
			return
		}
		ui.request()
	})
}

// export renders the current series offscreen and saves it as a PNG.
// The rendering happens off the event loop with its own theme, since
// shapers are not safe for concurrent use.
func (ui *UI) export() {
	series, style := ui.chart.Series(), ui.chart.Style
	size, metric := ui.chart.Size(), ui.chart.Metric()
	name := "chart.png"
	if ui.quote.Symbol != "" {
		name = ui.quote.Symbol + "-" + ui.quote.Period.String() + ".png"
	}
	go func() {
		img, err := chart.Export(newTheme(), series, style, size, metric)
		if err != nil {
			ui.post(func() { ui.fail("Failed rendering chart: %v", err) })
			return
		}
		w, err := ui.expl.CreateFile(name)
		if err != nil {
			if !errors.Is(err, explorer.ErrUserDecline) {
				ui.post(func() { ui.fail("Failed creating %s: %v", name, err) })
			}
			return
		}
		defer w.Close()
		if err := chart.WritePNG(w, img); err != nil {
			ui.post(func() { ui.fail("Failed writing %s: %v", name, err) })
		}
	}()
}

func (ui *UI) fail(format string, args ...any) {
	ui.failed = true
	ui.status = fmt.Sprintf(format, args...)
	log.Print(ui.status)
}

type TabStyle struct {
	state  *widget.Enum
	label  material.LabelStyle
	border widget.Border
	inset  layout.Inset
	value  string
	fill   color.NRGBA
}

func Tab(th *material.Theme, state *widget.Enum, value, display string) TabStyle {
	selected := state.Value == value
	ts := TabStyle{
		state: state,
		label: material.Body2(th, display),
		inset: layout.UniformInset(2),
		border: widget.Border{
			Width: 1,
			Color: th.ContrastBg,
		},
		value: value,
	}
	ts.label.Alignment = text.Middle
	ts.label.MaxLines = 1
	if selected {
		ts.label.Color = th.ContrastFg
		ts.fill = th.ContrastBg
	}
	return ts
}

func (t TabStyle) Layout(gtx C) D {
	return t.inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return t.border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return t.state.Layout(gtx, t.value, func(gtx layout.Context) layout.Dimensions {
				return layout.Background{}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					paint.FillShape(gtx.Ops, t.fill, clip.Rect{Max: gtx.Constraints.Min}.Op())
					return D{Size: gtx.Constraints.Min}
				}, func(gtx C) D {
					return t.inset.Layout(gtx, t.label.Layout)
				})
			})
		})
	})
}

func (ui *UI) layoutToolbar(gtx C) D {
	inset := layout.UniformInset(2)
	button := func(btn *widget.Clickable, icon *widget.Icon, desc string) layout.FlexChild {
		return layout.Rigid(func(gtx C) D {
			return inset.Layout(gtx, material.IconButton(ui.th, btn, icon, desc).Layout)
		})
	}
	children := []layout.FlexChild{
		layout.Flexed(1, func(gtx C) D {
			return inset.Layout(gtx, func(gtx C) D {
				if ui.ws.FollowingFile() {
					gtx = gtx.Disabled()
				}
				return ui.symbol.Layout(gtx, ui.th, "Symbol")
			})
		}),
		button(&ui.loadBtn, loadIcon, "Load"),
		button(&ui.openBtn, openIcon, "Open quote file"),
	}
	if ui.ws.FollowingFile() {
		children = append(children, button(&ui.networkBtn, networkIcon, "Use network source"))
	}
	children = append(children, button(&ui.exportBtn, exportIcon, "Export PNG"))
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx, children...)
}

func (ui *UI) layoutPeriods(gtx C) D {
	tabs := make([]layout.FlexChild, 0, len(backend.Periods))
	for _, p := range backend.Periods {
		tabs = append(tabs, layout.Flexed(1, Tab(ui.th, &ui.period, p.String(), strings.ToUpper(p.String())).Layout))
	}
	return layout.Flex{}.Layout(gtx, tabs...)
}

func (ui *UI) layoutStatus(gtx C) D {
	if ui.status == "" {
		return D{}
	}
	l := material.Body2(ui.th, ui.status)
	if ui.failed {
		l.Color = color.NRGBA{R: 150, A: 255}
	}
	return layout.UniformInset(4).Layout(gtx, l.Layout)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(ui.layoutToolbar),
		layout.Rigid(ui.layoutPeriods),
		layout.Rigid(ui.layoutStatus),
		layout.Flexed(1, func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return ui.chart.Layout(gtx, ui.th)
		}),
	)
}
