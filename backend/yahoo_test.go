package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleChart = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "0P0001KVR5.F", "shortName": "Sample Fund"},
      "timestamp": [1735804800, 1735891200, 1736150400, 1736236800],
      "indicators": {"quote": [{"close": [10.5, null, 11.25, 12, 13]}]}
    }],
    "error": null
  }
}`

const notFoundChart = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func TestYahooFetch(t *testing.T) {
	var gotPath, gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(sampleChart))
	}))
	defer srv.Close()

	y := NewYahooSource(srv.URL+"/v8/finance/chart", "")
	q, err := y.Fetch(context.Background(), " 0p0001kvr5.f", PYTD)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v8/finance/chart/0P0001KVR5.F" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "range=ytd") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAgent == "" {
		t.Errorf("expected a User-Agent header")
	}
	if q.Name != "Sample Fund" || q.Title() != "Sample Fund" {
		t.Errorf("expected the short name, got %q", q.Name)
	}
	if q.Symbol != "0P0001KVR5.F" || q.Period != PYTD {
		t.Errorf("unexpected quote identity %q %v", q.Symbol, q.Period)
	}
	// The null close and the close beyond the timestamps are skipped.
	expect := []float64{10.5, 11.25, 12}
	if len(q.Series) != len(expect) {
		t.Fatalf("expected %d points, got %d", len(expect), len(q.Series))
	}
	for i, v := range expect {
		if q.Series[i].Value != v {
			t.Errorf("[%d] expected %v, got %v", i, v, q.Series[i].Value)
		}
	}
	if !q.Series[0].Time.Equal(time.Unix(1735804800, 0)) {
		t.Errorf("unexpected first timestamp %v", q.Series[0].Time)
	}
}

func TestYahooFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/MISSING":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(notFoundChart))
		case "/BROKEN":
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}
	}))
	defer srv.Close()
	y := NewYahooSource(srv.URL, "")

	_, err := y.Fetch(context.Background(), "missing", P1Mo)
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Code != "Not Found" {
		t.Errorf("expected the API error to be reported, got %v", err)
	}
	if _, err := y.Fetch(context.Background(), "broken", P1Mo); err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected the status to be reported, got %v", err)
	}
	if _, err := y.Fetch(context.Background(), "  ", P1Mo); !errors.Is(err, ErrNoSymbol) {
		t.Errorf("expected ErrNoSymbol, got %v", err)
	}
	if _, err := y.Fetch(context.Background(), "AAPL", Period(0)); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("expected ErrUnknownPeriod, got %v", err)
	}
}

func TestYahooFetchCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := NewYahooSource(srv.URL, "").Fetch(ctx, "AAPL", P1D)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}
