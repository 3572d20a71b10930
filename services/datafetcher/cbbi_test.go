package datafetcher

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"crypto_tracker_backend/models"
)

func TestCBBIFullHistory(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()
	day2 := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC).Unix()
	day3 := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC).Unix()

	server := newFeedServer(fmt.Sprintf(
		`{"Confidence":{"%d":0.41,"%d":0.45,"%d":0.52}}`, day2, day3, day1))
	defer server.Close()

	fetcher := NewCBBIFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// Records come back oldest first regardless of map order
	first := records[0].(*models.CBBIScore)
	last := records[2].(*models.CBBIScore)
	if first.Date != "2024-03-01" || first.Score != 0.52 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if last.Date != "2024-03-03" || last.Score != 0.45 {
		t.Fatalf("unexpected last record: %+v", last)
	}
}

func TestCBBIKeepsLatestScorePerDay(t *testing.T) {
	morning := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC).Unix()
	evening := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC).Unix()

	server := newFeedServer(fmt.Sprintf(
		`{"Confidence":{"%d":0.40,"%d":0.48}}`, morning, evening))
	defer server.Close()

	fetcher := NewCBBIFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if score := records[0].(*models.CBBIScore).Score; score != 0.48 {
		t.Fatalf("expected the later score 0.48, got %v", score)
	}
}

func TestCBBIFailsClosedOnEmptyScores(t *testing.T) {
	server := newFeedServer(`{"Confidence":{}}`)
	defer server.Close()

	fetcher := NewCBBIFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	_, err := fetcher.Fetch(context.Background())
	assertFetchErrorKind(t, err, KindSchema)
}

func TestCBBIFailsClosedOnBadTimestamp(t *testing.T) {
	server := newFeedServer(`{"Confidence":{"not-a-timestamp":0.5}}`)
	defer server.Close()

	fetcher := NewCBBIFetcher(&http.Client{Timeout: 5 * time.Second}, server.URL)
	_, err := fetcher.Fetch(context.Background())
	assertFetchErrorKind(t, err, KindSchema)
}
