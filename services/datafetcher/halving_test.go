package datafetcher

import (
	"context"
	"testing"
	"time"

	"crypto_tracker_backend/models"
)

func halvingAt(t *testing.T, now time.Time) *models.Halving {
	t.Helper()

	fetcher := NewHalvingFetcher()
	fetcher.now = func() time.Time { return now }

	records, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	return records[0].(*models.Halving)
}

func TestHalvingBetweenKnownDates(t *testing.T) {
	record := halvingAt(t, time.Date(2024, 4, 10, 15, 0, 0, 0, time.UTC))

	if record.Date != "2024-04-10" {
		t.Fatalf("unexpected date %s", record.Date)
	}
	if record.LastHalvingDate != "2020-05-11" {
		t.Fatalf("unexpected last halving %s", record.LastHalvingDate)
	}
	if record.DaysSinceHalving != 1430 {
		t.Fatalf("expected 1430 days since halving, got %d", record.DaysSinceHalving)
	}
	if record.NextHalvingDate != "2024-04-20" {
		t.Fatalf("unexpected next halving %s", record.NextHalvingDate)
	}
	if record.DaysUntilNextHalving != 10 {
		t.Fatalf("expected 10 days until next halving, got %d", record.DaysUntilNextHalving)
	}
	if record.ProjectedTopDate != "2021-10-13" {
		t.Fatalf("unexpected projected top %s", record.ProjectedTopDate)
	}
	if record.DaysUntilProjectedTop != -910 {
		t.Fatalf("expected -910 days until projected top, got %d", record.DaysUntilProjectedTop)
	}
}

func TestHalvingProjectsBeyondKnownDates(t *testing.T) {
	record := halvingAt(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	if record.LastHalvingDate != "2024-04-20" {
		t.Fatalf("unexpected last halving %s", record.LastHalvingDate)
	}
	if record.DaysSinceHalving != 256 {
		t.Fatalf("expected 256 days since halving, got %d", record.DaysSinceHalving)
	}
	if record.NextHalvingDate != "2028-04-19" {
		t.Fatalf("expected projected next halving 2028-04-19, got %s", record.NextHalvingDate)
	}
}

func TestHalvingBeforeFirstRecordedDate(t *testing.T) {
	fetcher := NewHalvingFetcher()
	fetcher.now = func() time.Time { return time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err := fetcher.Fetch(context.Background())
	assertFetchErrorKind(t, err, KindSchema)
}
