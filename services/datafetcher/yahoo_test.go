package datafetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// chartTestStart anchors synthetic price series; noon UTC keeps the derived
// calendar day unambiguous
var chartTestStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// newChartServer serves Yahoo-shaped chart responses for the given per-symbol
// daily closing series
func newChartServer(t *testing.T, series map[string][]float64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		symbol := parts[len(parts)-1]

		closes, ok := series[symbol]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		timestamps := make([]int64, len(closes))
		for i := range closes {
			timestamps[i] = chartTestStart.AddDate(0, 0, i).Unix()
		}

		closePtrs := make([]*float64, len(closes))
		for i := range closes {
			closePtrs[i] = &closes[i]
		}

		payload := map[string]interface{}{
			"chart": map[string]interface{}{
				"result": []map[string]interface{}{{
					"timestamp": timestamps,
					"indicators": map[string]interface{}{
						"quote": []map[string]interface{}{{
							"close": closePtrs,
						}},
					},
				}},
				"error": nil,
			},
		}
		json.NewEncoder(w).Encode(payload)
	}))
}

// chartTestDate returns the expected date string for day index i
func chartTestDate(i int) string {
	return chartTestStart.AddDate(0, 0, i).Format("2006-01-02")
}

func TestDailyClosesSkipsNullValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d,%d,%d],"indicators":{"quote":[{"close":[10.0,null,12.0]}]}}],"error":null}}`,
			chartTestStart.Unix(), chartTestStart.AddDate(0, 0, 1).Unix(), chartTestStart.AddDate(0, 0, 2).Unix())
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	points, err := client.DailyCloses(context.Background(), "BTC-USD", "4y")
	if err != nil {
		t.Fatalf("DailyCloses failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points after skipping null, got %d", len(points))
	}
	if points[0].Close != 10.0 || points[1].Close != 12.0 {
		t.Fatalf("unexpected closes: %+v", points)
	}
	if points[1].Date != chartTestDate(2) {
		t.Fatalf("unexpected date %s", points[1].Date)
	}
}

func TestDailyClosesFailsClosedOnBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	_, err := client.DailyCloses(context.Background(), "BTC-USD", "4y")
	assertFetchErrorKind(t, err, KindSchema)
}

func TestDailyClosesRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, 5*time.Second)
	_, err := client.DailyCloses(context.Background(), "BTC-USD", "4y")
	assertFetchErrorKind(t, err, KindNetwork)
}

// assertFetchErrorKind fails the test unless err is a FetchError of the
// given kind
func assertFetchErrorKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	fetchErr, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	if fetchErr.Kind != kind {
		t.Fatalf("expected kind %v, got %v", kind, fetchErr.Kind)
	}
}
