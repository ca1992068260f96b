package backend

import (
	"context"
	"fmt"
	"log"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

type WindowState struct {
	*Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle *Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Options select and configure the quote source.
type Options struct {
	// File, when set, replaces the network source with a local file that
	// is reloaded whenever it changes.
	File      string
	BaseURL   string
	Proxy     string
	CachePath string
}

type Bundle struct {
	Loader *Loader
	Cache  *Cache
	appCtx context.Context
	// stopWatch stops following the current file, if any.
	stopWatch context.CancelFunc
	network   Source
}

// NewBundle builds the backend for one window. A cache that cannot be
// opened is logged and skipped.
func NewBundle(ctx context.Context, opts Options) (*Bundle, error) {
	b := &Bundle{appCtx: ctx}
	var source Source = NewYahooSource(opts.BaseURL, opts.Proxy)
	if opts.CachePath != "" {
		cache, err := OpenCache(opts.CachePath)
		if err != nil {
			log.Printf("continuing without quote cache: %v", err)
		} else {
			b.Cache = cache
			source = CachedSource{Source: source, Cache: cache}
		}
	}
	b.network = source
	b.Loader = NewLoader(ctx, source)
	if opts.File != "" {
		if err := b.OpenFile(opts.File); err != nil {
			b.Close()
			return nil, err
		}
	}
	return b, nil
}

// OpenFile switches the loader to the quote file at path and reloads
// whenever it changes.
func (b *Bundle) OpenFile(path string) error {
	fs := FileSource{Path: path}
	ctx, cancel := context.WithCancel(b.appCtx)
	changes, err := fs.Watch(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed following %s: %w", path, err)
	}
	if b.stopWatch != nil {
		b.stopWatch()
	}
	b.stopWatch = cancel
	b.Loader.SetSource(fs)
	b.Loader.Follow(ctx, changes)
	return nil
}

// UseNetwork switches back from a quote file to the network source.
func (b *Bundle) UseNetwork() {
	if b.stopWatch != nil {
		b.stopWatch()
		b.stopWatch = nil
	}
	b.Loader.SetSource(b.network)
}

// FollowingFile reports whether a quote file is the current source.
func (b *Bundle) FollowingFile() bool {
	return b.stopWatch != nil
}

func (b *Bundle) Close() error {
	if b.stopWatch != nil {
		b.stopWatch()
	}
	if b.Cache != nil {
		return b.Cache.Close()
	}
	return nil
}
