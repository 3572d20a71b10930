package datafetcher

import (
	"context"
	"testing"
	"time"

	"crypto_tracker_backend/models"
)

func TestPiCycleTopWarning(t *testing.T) {
	// 400 days: a long flat stretch followed by a strong rally pushes the
	// 111-day MA well past twice the 350-day MA
	closes := make([]float64, 400)
	for i := 0; i < 289; i++ {
		closes[i] = 10
	}
	for i := 289; i < 400; i++ {
		closes[i] = 1000
	}

	server := newChartServer(t, map[string][]float64{"BTC-USD": closes})
	defer server.Close()

	fetcher := NewPiCycleFetcher(NewYahooClient(server.URL, 5*time.Second), 0.95)
	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	record := records[0].(*models.PiCycle)
	if record.Date != chartTestDate(399) {
		t.Fatalf("unexpected date %s", record.Date)
	}
	if record.Signal != models.SignalTopWarning {
		t.Fatalf("expected %q, got %q (ratio %.4f)", models.SignalTopWarning, record.Signal, record.Ratio)
	}
	if !record.Crossed {
		t.Fatal("expected crossed flag")
	}
	if record.MA111 != 1000 {
		t.Fatalf("expected MA111=1000, got %.4f", record.MA111)
	}
}

func TestPiCycleNeutral(t *testing.T) {
	// A flat series keeps the ratio at exactly 0.5
	closes := make([]float64, 400)
	for i := range closes {
		closes[i] = 100
	}

	server := newChartServer(t, map[string][]float64{"BTC-USD": closes})
	defer server.Close()

	fetcher := NewPiCycleFetcher(NewYahooClient(server.URL, 5*time.Second), 0.95)
	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	record := records[0].(*models.PiCycle)
	if record.Signal != models.SignalNeutral {
		t.Fatalf("expected %q, got %q", models.SignalNeutral, record.Signal)
	}
	if record.Crossed {
		t.Fatal("did not expect crossed flag")
	}
	if record.Ratio != 0.5 {
		t.Fatalf("expected ratio 0.5, got %.4f", record.Ratio)
	}
}

func TestPiCycleInsufficientHistory(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100
	}

	server := newChartServer(t, map[string][]float64{"BTC-USD": closes})
	defer server.Close()

	fetcher := NewPiCycleFetcher(NewYahooClient(server.URL, 5*time.Second), 0.95)
	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	record := records[0].(*models.PiCycle)
	if record.Signal != models.SignalInsufficientHistory {
		t.Fatalf("expected %q, got %q", models.SignalInsufficientHistory, record.Signal)
	}
	if record.MA111 != 0 || record.MA350x2 != 0 {
		t.Fatal("expected zero moving averages with insufficient history")
	}
}
