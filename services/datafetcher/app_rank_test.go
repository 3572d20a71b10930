package datafetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto_tracker_backend/models"
)

func newFeedServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
}

func TestCoinbaseRankFound(t *testing.T) {
	server := newFeedServer(`{"feed":{"results":[
		{"id":"111","name":"Other App"},
		{"id":"222","name":"Another App"},
		{"id":"886427730","name":"Coinbase"}
	]}}`)
	defer server.Close()

	fetcher := NewCoinbaseRankFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	fetcher.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0].(*models.CoinbaseRank)
	if record.Rank != 3 {
		t.Fatalf("expected rank 3, got %d", record.Rank)
	}
	if record.Date != "2024-06-01" {
		t.Fatalf("unexpected date %s", record.Date)
	}
	if record.Store != "apple_us" || record.Chart != "top_free_overall" {
		t.Fatalf("unexpected metadata: %+v", record)
	}
}

func TestCoinbaseRankNotListed(t *testing.T) {
	server := newFeedServer(`{"feed":{"results":[{"id":"111","name":"Other App"}]}}`)
	defer server.Close()

	fetcher := NewCoinbaseRankFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	record := records[0].(*models.CoinbaseRank)
	if record.Rank != rankNotListed {
		t.Fatalf("expected rank %d, got %d", rankNotListed, record.Rank)
	}
}

func TestCoinbaseRankFailsClosedOnEmptyFeed(t *testing.T) {
	server := newFeedServer(`{"feed":{"results":[]}}`)
	defer server.Close()

	fetcher := NewCoinbaseRankFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	_, err := fetcher.Fetch(context.Background())
	assertFetchErrorKind(t, err, KindSchema)
}

func TestCoinbaseRankServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewCoinbaseRankFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	_, err := fetcher.Fetch(context.Background())
	assertFetchErrorKind(t, err, KindNetwork)
}
