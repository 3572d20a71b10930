package datafetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"crypto_tracker_backend/models"
)

// cbbiResponse represents the colintalkscrypto latest.json payload. The
// Confidence field maps unix timestamps (as strings) to index scores in 0..1.
type cbbiResponse struct {
	Confidence map[string]float64 `json:"Confidence"`
}

// CBBIFetcher fetches the full CBBI confidence score history
type CBBIFetcher struct {
	httpClient *http.Client
	url        string
}

// NewCBBIFetcher creates a CBBI adapter
func NewCBBIFetcher(httpClient *http.Client, url string) *CBBIFetcher {
	return &CBBIFetcher{
		httpClient: httpClient,
		url:        url,
	}
}

func (f *CBBIFetcher) Name() string {
	return models.IndicatorCBBI
}

// Fetch returns one record per calendar day covered by the source, oldest
// first. The source publishes its complete history, so every cycle also
// backfills any days missed while the process was down.
func (f *CBBIFetcher) Fetch(ctx context.Context) ([]models.IndicatorRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, networkError("failed to build CBBI request: %v", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, networkError("failed to fetch CBBI data: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, networkError("rate limited by CBBI endpoint")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, networkError("unexpected status %d from CBBI endpoint", resp.StatusCode)
	}

	var payload cbbiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, schemaError("failed to parse CBBI response: %v", err)
	}
	if len(payload.Confidence) == 0 {
		return nil, schemaError("CBBI response contains no confidence scores")
	}

	// Collapse to one score per calendar day, keeping the latest timestamp
	type daily struct {
		ts    int64
		score float64
	}
	byDate := make(map[string]daily, len(payload.Confidence))
	for raw, score := range payload.Confidence {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, schemaError("non-numeric CBBI timestamp %q", raw)
		}
		date := time.Unix(ts, 0).UTC().Format(models.DateLayout)
		if prev, ok := byDate[date]; !ok || ts > prev.ts {
			byDate[date] = daily{ts: ts, score: score}
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	records := make([]models.IndicatorRecord, 0, len(dates))
	for _, date := range dates {
		records = append(records, &models.CBBIScore{
			Date:  date,
			Score: byDate[date].score,
		})
	}

	return records, nil
}
