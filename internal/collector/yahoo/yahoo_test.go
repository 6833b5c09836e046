package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fedetic/stockies/internal/collector"
	"github.com/fedetic/stockies/internal/core"
)

func TestYahoo_ImplementsProvider(t *testing.T) {
	var _ collector.Provider = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	if got := New().Name(); got != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", got)
	}
}

func TestToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"000001.SZ", "000001.SZ"},
	}

	for _, tc := range tests {
		if got := toYahooSymbol(tc.input); got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, valid := range []string{"AAPL", "MSFT", "600519.SH", "0700.HK"} {
		if err := validateSymbol(valid); err != nil {
			t.Errorf("validateSymbol(%s) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "has space", "way-too-long-symbol-name", "a;b"} {
		if err := validateSymbol(invalid); err == nil {
			t.Errorf("validateSymbol(%s) = nil, want error", invalid)
		}
	}
}

const chartBody = `{
  "chart": {
    "result": [{
      "timestamp": [1704067200, 1704153600, 1704240000],
      "indicators": {
        "quote": [{
          "open":   [100.0, null, 102.0],
          "high":   [101.0, 102.5, 103.0],
          "low":    [99.0, 100.5, 101.0],
          "close":  [100.5, 101.5, 102.5],
          "volume": [1000000, 1100000, null]
        }]
      }
    }],
    "error": null
  }
}`

func TestFetchHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	}))
	defer server.Close()

	y := New(WithBaseURL(server.URL))
	bars, err := y.FetchHistory(context.Background(), "AAPL",
		time.Unix(1704067200, 0), time.Unix(1704240000, 0), core.IntervalDaily)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}

	// The middle row has a null open and is skipped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 100.5 || bars[0].Volume != 1000000 {
		t.Errorf("unexpected first bar: %+v", bars[0])
	}
	if bars[1].Volume != 0 {
		t.Errorf("null volume should become 0, got %v", bars[1].Volume)
	}
	if bars[0].Symbol != "AAPL" {
		t.Errorf("bars must carry the requested symbol, got %s", bars[0].Symbol)
	}
}

func TestFetchHistory_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer server.Close()

	y := New(WithBaseURL(server.URL))
	_, err := y.FetchHistory(context.Background(), "GHOST",
		time.Now().AddDate(0, -1, 0), time.Now(), core.IntervalDaily)
	if !errors.Is(err, core.ErrProviderFailed) {
		t.Errorf("expected PROVIDER_FAILED, got %v", err)
	}
}

func TestFetchHistory_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	y := New(WithBaseURL(server.URL))
	_, err := y.FetchHistory(context.Background(), "GHOST",
		time.Now().AddDate(0, -1, 0), time.Now(), core.IntervalDaily)
	if !errors.Is(err, core.ErrNoData) {
		t.Errorf("expected NO_DATA, got %v", err)
	}
}

func TestFetchHistory_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	y := New(WithBaseURL(server.URL))
	_, err := y.FetchHistory(context.Background(), "AAPL",
		time.Now().AddDate(0, -1, 0), time.Now(), core.IntervalDaily)
	if !errors.Is(err, core.ErrProviderFailed) {
		t.Errorf("expected PROVIDER_FAILED, got %v", err)
	}
}

func TestFetchHistory_InvalidSymbol(t *testing.T) {
	y := New()
	if _, err := y.FetchHistory(context.Background(), "not a symbol",
		time.Now(), time.Now(), core.IntervalDaily); err == nil {
		t.Error("expected validation error before any network call")
	}
}
