package datafetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"crypto_tracker_backend/models"
)

const (
	coinbaseAppID = "886427730"
	rankNotListed = 9999
)

// appleFeedResponse represents the Apple marketing tools RSS JSON feed
type appleFeedResponse struct {
	Feed struct {
		Results []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"results"`
	} `json:"feed"`
}

// CoinbaseRankFetcher scrapes the Coinbase app position from the Apple
// top-free chart feed
type CoinbaseRankFetcher struct {
	httpClient *http.Client
	feedURL    string
	now        func() time.Time
}

// NewCoinbaseRankFetcher creates an App Store ranking adapter
func NewCoinbaseRankFetcher(httpClient *http.Client, feedURL string) *CoinbaseRankFetcher {
	return &CoinbaseRankFetcher{
		httpClient: httpClient,
		feedURL:    feedURL,
		now:        time.Now,
	}
}

func (f *CoinbaseRankFetcher) Name() string {
	return models.IndicatorCoinbaseRank
}

// Fetch returns today's Coinbase chart position. An app missing from the
// chart is a valid observation (rank 9999); an unreachable or reshaped feed
// is a failure.
func (f *CoinbaseRankFetcher) Fetch(ctx context.Context) ([]models.IndicatorRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return nil, networkError("failed to build app store request: %v", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, networkError("failed to fetch app store feed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, networkError("rate limited by app store feed")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, networkError("unexpected status %d from app store feed", resp.StatusCode)
	}

	var feed appleFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, schemaError("failed to parse app store feed: %v", err)
	}
	if len(feed.Feed.Results) == 0 {
		return nil, schemaError("app store feed contains no results")
	}

	rank := rankNotListed
	for i, app := range feed.Feed.Results {
		if app.ID == coinbaseAppID {
			rank = i + 1
			break
		}
	}

	record := &models.CoinbaseRank{
		Date:  f.now().UTC().Format(models.DateLayout),
		Rank:  rank,
		Store: "apple_us",
		Chart: "top_free_overall",
	}

	return []models.IndicatorRecord{record}, nil
}
