package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/fsnotify/fsnotify"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

// FileSource reads history from a local file holding a single instrument,
// either as CSV rows of timestamp and value or as a saved chart API
// response. The requested symbol is ignored; the period trims the history
// relative to its last point.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context, _ string, period Period) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return Quote{}, fmt.Errorf("failed opening quote file: %w", err)
	}
	defer file.Close()
	q, err := ReadQuote(file)
	if err != nil {
		return Quote{}, fmt.Errorf("failed reading %s: %w", f.Path, err)
	}
	if q.Symbol == "" {
		base := filepath.Base(f.Path)
		q.Symbol = strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	q.Period = period
	q.Series = Trim(q.Series, period)
	q.FetchedAt = time.Now()
	return q, nil
}

// Watch signals on the returned channel every time the file is written or
// replaced, until ctx is done. Signals arriving while one is pending are
// coalesced.
func (f FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	// Editors often replace files rather than writing them, so watch the
	// containing directory.
	dir := filepath.Dir(f.Path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed watching %s: %w", dir, err)
	}
	target := filepath.Clean(f.Path)
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("file watcher error: %v", err)
			}
		}
	}()
	return out, nil
}

// ReadQuote parses a quote file. Input starting with '{' is decoded as a
// chart API response, input starting with '[' as a list of price
// histories, anything else as CSV. A file without any usable points
// reports ErrNoData.
func ReadQuote(r io.Reader) (Quote, error) {
	q, err := readQuote(r)
	if err != nil {
		return Quote{}, err
	}
	if len(q.Series) == 0 {
		return Quote{}, ErrNoData
	}
	return q, nil
}

func readQuote(r io.Reader) (Quote, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Quote{}, ErrNoData
			}
			return Quote{}, err
		}
		if !unicode.IsSpace(rune(b[0])) {
			break
		}
		_, _ = br.ReadByte()
	}
	switch b, _ := br.Peek(1); b[0] {
	case '{':
		body, err := io.ReadAll(br)
		if err != nil {
			return Quote{}, err
		}
		return decodeChart(body)
	case '[':
		return decodeHistory(br)
	}
	series, err := parseCSV(br)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Series: series}, nil
}

// priceHistory is one entry of a saved list of price histories.
type priceHistory struct {
	Ticker string `json:"ticker"`
	Price  []struct {
		DateTime string   `json:"dateTime"`
		Value    *float64 `json:"value"`
	} `json:"price"`
}

// decodeHistory reads the first entry of a JSON list of price histories.
func decodeHistory(r io.Reader) (Quote, error) {
	var histories []priceHistory
	if err := json.NewDecoder(r).Decode(&histories); err != nil {
		return Quote{}, fmt.Errorf("failed decoding price history: %w", err)
	}
	if len(histories) == 0 {
		return Quote{}, ErrNoData
	}
	if len(histories) > 1 {
		log.Printf("using the first of %d price histories", len(histories))
	}
	h := histories[0]
	q := Quote{Symbol: strings.ToUpper(strings.TrimSpace(h.Ticker))}
	for i, p := range h.Price {
		if p.Value == nil {
			continue
		}
		t, err := parseTime(p.DateTime)
		if err != nil {
			log.Printf("skipping price %d: %v", i, err)
			continue
		}
		q.Series = append(q.Series, plot.PricePoint{Time: t, Value: *p.Value})
	}
	sort.SliceStable(q.Series, func(i, j int) bool { return q.Series[i].Time.Before(q.Series[j].Time) })
	if err := q.Series.Validate(); err != nil {
		return Quote{}, err
	}
	return q, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts unix seconds or one of timeLayouts, interpreted as UTC
// when no zone is given.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// headerColumn reports the value column named by a header row, or -1 if rec
// is not a header.
func headerColumn(rec []string) int {
	if _, err := parseTime(rec[0]); err == nil {
		return -1
	}
	col := len(rec) - 1
	for i, name := range rec {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "close":
			return i
		case "value", "price":
			col = i
		}
	}
	return col
}

// parseCSV reads rows of timestamp and value. An optional header row picks
// the value column ("close", then "value" or "price", else the last
// column). Malformed rows are logged and skipped.
func parseCSV(r io.Reader) (plot.Series, error) {
	lr := NewLineReader(r)
	cr := csv.NewReader(lr)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var (
		series plot.Series
		col    = 1
		row    int
	)
	handle := func(rec []string) {
		row++
		if len(rec) < 2 {
			log.Printf("skipping row %d: expected at least 2 fields, got %d", row, len(rec))
			return
		}
		if row == 1 {
			if idx := headerColumn(rec); idx >= 0 {
				col = idx
				return
			}
		}
		if col >= len(rec) {
			log.Printf("skipping row %d: missing column %d", row, col)
			return
		}
		raw := strings.TrimSpace(rec[col])
		if raw == "" || strings.EqualFold(raw, "null") {
			return
		}
		t, err := parseTime(rec[0])
		if err != nil {
			log.Printf("skipping row %d: %v", row, err)
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Printf("skipping row %d: failed parsing value %q: %v", row, raw, err)
			return
		}
		series = append(series, plot.PricePoint{Time: t, Value: v})
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			log.Printf("skipping malformed row: %v", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed reading csv: %w", err)
		}
		handle(rec)
	}
	// The final line may lack a newline.
	if tail := bytes.TrimSpace(lr.Partial()); len(tail) > 0 {
		tr := csv.NewReader(bytes.NewReader(tail))
		tr.TrimLeadingSpace = true
		tr.FieldsPerRecord = -1
		if rec, err := tr.Read(); err == nil {
			handle(rec)
		} else {
			log.Printf("skipping malformed final row: %v", err)
		}
	}

	sort.SliceStable(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// Trim drops the points of s that precede the start of period, measured
// back from the last point.
func Trim(s plot.Series, period Period) plot.Series {
	if len(s) == 0 {
		return s
	}
	since := period.Since(s[len(s)-1].Time)
	if since.IsZero() {
		return s
	}
	i := sort.Search(len(s), func(i int) bool { return !s[i].Time.Before(since) })
	return s[i:]
}
