package datafetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// YahooClient fetches daily price history from the Yahoo Finance chart API.
// It is shared by the adapters that need closing-price series.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooClient creates a Yahoo Finance chart client
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// yahooChartResponse represents the v8 chart API response structure.
// Close values are pointers because the API returns nulls for gap days.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
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

// PricePoint is one daily closing price
type PricePoint struct {
	Date  string
	Close float64
}

// DailyCloses returns the daily closing price series for a symbol over the
// given range (e.g. "4y"), oldest first. Days without a close are skipped.
func (c *YahooClient) DailyCloses(ctx context.Context, symbol, dataRange string) ([]PricePoint, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", c.baseURL, symbol, dataRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, networkError("failed to build request for %s: %v", symbol, err)
	}
	req.Header.Set("User-Agent", "crypto-tracker-backend/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError("failed to fetch %s: %v", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, networkError("rate limited fetching %s", symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, networkError("unexpected status %d fetching %s", resp.StatusCode, symbol)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, schemaError("failed to parse chart response for %s: %v", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, schemaError("chart API error for %s: %s (%s)",
			symbol, chart.Chart.Error.Description, chart.Chart.Error.Code)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, schemaError("empty chart result for %s", symbol)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	n := len(result.Timestamp)
	if len(closes) < n {
		n = len(closes)
	}

	points := make([]PricePoint, 0, n)
	for i := 0; i < n; i++ {
		if closes[i] == nil {
			continue
		}
		points = append(points, PricePoint{
			Date:  time.Unix(result.Timestamp[i], 0).UTC().Format("2006-01-02"),
			Close: *closes[i],
		})
	}

	if len(points) == 0 {
		return nil, schemaError("no usable closing prices for %s", symbol)
	}

	return points, nil
}
