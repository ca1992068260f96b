package backend

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

type RWBox[T any] struct {
	t    T
	lock sync.RWMutex
}

func (r *RWBox[T]) Read(f func(*T)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f(&r.t)
}

func (r *RWBox[T]) Write(f func(*T)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	f(&r.t)
}

// Request identifies the history the UI wants to display.
type Request struct {
	Symbol string
	Period Period
}

func (r Request) String() string {
	return fmt.Sprintf("%s %s", r.Symbol, r.Period)
}

// Result is the outcome of one Request. Results with Loading set are
// published when a request starts.
type Result struct {
	Seq     uint64
	Request Request
	Quote   Quote
	Err     error
	Loading bool
}

type loaderState struct {
	latest  Result
	changed chan struct{}
	cancel  context.CancelFunc
	last    Request
	source  Source
}

// Loader runs fetches off the UI goroutine. Every request gets a larger
// sequence number than the one before and supersedes it: the previous
// fetch is cancelled and its result, should it still arrive, is dropped.
type Loader struct {
	appCtx context.Context
	seq    atomic.Uint64
	state  RWBox[loaderState]
}

func NewLoader(appCtx context.Context, source Source) *Loader {
	l := &Loader{appCtx: appCtx}
	l.state.Write(func(s *loaderState) {
		s.changed = make(chan struct{})
		s.source = source
	})
	return l
}

// SetSource replaces the source used by subsequent requests.
func (l *Loader) SetSource(source Source) {
	l.state.Write(func(s *loaderState) {
		s.source = source
	})
}

// Request starts fetching r and returns its sequence number.
func (l *Loader) Request(r Request) uint64 {
	seq := l.seq.Add(1)
	ctx, cancel := context.WithCancel(l.appCtx)
	var source Source
	l.state.Write(func(s *loaderState) {
		if s.cancel != nil {
			s.cancel()
		}
		s.cancel = cancel
		s.last = r
		source = s.source
	})
	l.publish(Result{Seq: seq, Request: r, Loading: true})
	go func() {
		defer cancel()
		q, err := source.Fetch(ctx, r.Symbol, r.Period)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("failed fetching quote %s: %v", r, err)
		}
		l.publish(Result{Seq: seq, Request: r, Quote: q, Err: err})
	}()
	return seq
}

// Reload repeats the most recent request.
func (l *Loader) Reload() uint64 {
	var last Request
	l.state.Read(func(s *loaderState) {
		last = s.last
	})
	return l.Request(last)
}

// Follow reloads every time changes fires until ctx is done or changes is
// closed.
func (l *Loader) Follow(ctx context.Context, changes <-chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				l.Reload()
			}
		}
	}()
}

// IsLatest reports whether seq belongs to the most recent request.
func (l *Loader) IsLatest(seq uint64) bool {
	return seq == l.seq.Load()
}

// Latest returns the most recently published result.
func (l *Loader) Latest() Result {
	var r Result
	l.state.Read(func(s *loaderState) {
		r = s.latest
	})
	return r
}

func (l *Loader) publish(r Result) {
	if !l.IsLatest(r.Seq) {
		log.Printf("discarding stale result %d for %s", r.Seq, r.Request)
		return
	}
	l.state.Write(func(s *loaderState) {
		// A newer request may have published in the meantime.
		if r.Seq < s.latest.Seq {
			return
		}
		s.latest = r
		close(s.changed)
		s.changed = make(chan struct{})
	})
}

// Stream emits the latest result whenever it changes. It is suitable as a
// stream provider for the UI.
func (l *Loader) Stream(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		var sent uint64
		var sentLoading bool
		for {
			var (
				r       Result
				changed chan struct{}
			)
			l.state.Read(func(s *loaderState) {
				r = s.latest
				changed = s.changed
			})
			if r.Seq != 0 && (r.Seq != sent || sentLoading != r.Loading) && l.IsLatest(r.Seq) {
				select {
				case out <- r:
					sent, sentLoading = r.Seq, r.Loading
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
