package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

// DefaultYahooURL is the base of the public chart API.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// YahooSource fetches history from the Yahoo Finance chart API.
type YahooSource struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	// Now is used to compute explicit time windows. It defaults to
	// time.Now.
	Now func() time.Time
}

// NewYahooSource builds a source talking to baseURL, optionally through an
// HTTP proxy.
func NewYahooSource(baseURL, proxyURL string) *YahooSource {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.Printf("ignoring invalid proxy %q: %v", proxyURL, err)
		}
	}
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooSource{
		BaseURL:   baseURL,
		UserAgent: "Mozilla/5.0",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (y *YahooSource) now() time.Time {
	if y.Now != nil {
		return y.Now()
	}
	return time.Now()
}

func (y *YahooSource) chartURL(symbol string, period Period) string {
	base := y.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(symbol) + "?" + period.Query(y.now()).Encode()
}

func (y *YahooSource) Fetch(ctx context.Context, symbol string, period Period) (Quote, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return Quote{}, err
	}
	if !period.Valid() {
		return Quote{}, fmt.Errorf("%w: %d", ErrUnknownPeriod, period)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.chartURL(symbol, period), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed building request: %w", err)
	}
	if y.UserAgent != "" {
		req.Header.Set("User-Agent", y.UserAgent)
	}
	client := y.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed fetching %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("failed reading response for %s: %w", symbol, err)
	}
	// Unknown symbols come back as a 404 carrying an error payload.
	q, err := decodeChart(body)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return Quote{}, fmt.Errorf("fetching %s: status %d: %w", symbol, resp.StatusCode, err)
		}
		return Quote{}, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	q.Symbol = symbol
	q.Period = period
	q.FetchedAt = y.now()
	return q, nil
}

// chartResponse is the subset of the chart API response the app reads. It
// is also the format of saved quote files.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code, Description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %s: %s", e.Code, e.Description)
}

// decodeChart converts a chart API payload into a Quote. Null closes and
// closes without a matching timestamp are skipped.
func decodeChart(body []byte) (Quote, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return Quote{}, fmt.Errorf("failed decoding chart: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		return Quote{}, &apiError{Code: e.Code, Description: e.Description}
	}
	if len(chart.Chart.Result) == 0 {
		return Quote{}, ErrNoData
	}
	result := chart.Chart.Result[0]
	q := Quote{Symbol: result.Meta.Symbol, Name: result.Meta.ShortName}
	if q.Name == "" {
		q.Name = result.Meta.LongName
	}
	if len(result.Indicators.Quote) == 0 {
		return q, ErrNoData
	}
	closes := result.Indicators.Quote[0].Close
	series := make(plot.Series, 0, len(closes))
	for i, c := range closes {
		if c == nil || i >= len(result.Timestamp) {
			continue
		}
		series = append(series, plot.PricePoint{Time: time.Unix(result.Timestamp[i], 0), Value: *c})
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	if err := series.Validate(); err != nil {
		return q, err
	}
	q.Series = series
	return q, nil
}
