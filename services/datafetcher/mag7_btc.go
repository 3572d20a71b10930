package datafetcher

import (
	"context"
	"sort"

	"crypto_tracker_backend/models"

	"github.com/shopspring/decimal"
)

// mag7SmoothWindow is the smoothing window applied to the raw composite index
const mag7SmoothWindow = 7

// mag7Symbols lists the index constituents in fetch order with their weights.
// Bitcoin carries half the index, the MAG7 names share the rest.
var mag7Symbols = []struct {
	Symbol string
	Weight float64
}{
	{"BTC-USD", 0.50},
	{"MSFT", 0.10},
	{"AAPL", 0.10},
	{"GOOGL", 0.10},
	{"AMZN", 0.10},
	{"META", 0.05},
	{"NVDA", 0.05},
}

// Mag7BTCFetcher builds the BTC + MAG7 weighted composite index
type Mag7BTCFetcher struct {
	yahoo *YahooClient
}

// NewMag7BTCFetcher creates a MAG7-BTC index adapter
func NewMag7BTCFetcher(yahoo *YahooClient) *Mag7BTCFetcher {
	return &Mag7BTCFetcher{yahoo: yahoo}
}

func (f *Mag7BTCFetcher) Name() string {
	return models.IndicatorMag7BTC
}

// Fetch downloads four years of closes for every constituent, aligns them on
// shared trading days (BTC trades daily, stocks do not), normalizes each
// series to 100 at the first shared day, and returns the latest value of the
// smoothed weighted index with its moving averages.
func (f *Mag7BTCFetcher) Fetch(ctx context.Context) ([]models.IndicatorRecord, error) {
	series := make(map[string]map[string]float64, len(mag7Symbols))
	for _, s := range mag7Symbols {
		points, err := f.yahoo.DailyCloses(ctx, s.Symbol, "4y")
		if err != nil {
			return nil, err
		}
		closes := make(map[string]float64, len(points))
		for _, p := range points {
			closes[p.Date] = p.Close
		}
		series[s.Symbol] = closes
	}

	dates := alignedDates(series)
	if len(dates) < mag7SmoothWindow {
		return nil, insufficientHistoryError(
			"only %d shared trading days across constituents, need %d",
			len(dates), mag7SmoothWindow)
	}

	// Normalize every constituent to 100 at the first shared day
	base := make(map[string]float64, len(mag7Symbols))
	for _, s := range mag7Symbols {
		first := series[s.Symbol][dates[0]]
		if first == 0 {
			return nil, schemaError("zero base price for %s on %s", s.Symbol, dates[0])
		}
		base[s.Symbol] = first
	}

	index := make([]float64, len(dates))
	for i, date := range dates {
		value := 0.0
		for _, s := range mag7Symbols {
			value += s.Weight * (series[s.Symbol][date] / base[s.Symbol] * 100)
		}
		index[i] = value
	}

	smoothed := calculateSMASeries(index, mag7SmoothWindow)

	record := &models.Mag7BTC{
		Date:       dates[len(dates)-1],
		IndexValue: decimal.NewFromFloat(smoothed[len(smoothed)-1]),
		MA100:      calculateSMA(smoothed, 100),
		MA150:      calculateSMA(smoothed, 150),
		MA200:      calculateSMA(smoothed, 200),
		EMA100:     calculateEMA(smoothed, 100),
		EMA150:     calculateEMA(smoothed, 150),
		EMA200:     calculateEMA(smoothed, 200),
	}

	return []models.IndicatorRecord{record}, nil
}

// alignedDates returns the sorted dates present in every series
func alignedDates(series map[string]map[string]float64) []string {
	var dates []string
	for symbol, closes := range series {
		if dates == nil {
			for date := range closes {
				dates = append(dates, date)
			}
			continue
		}
		filtered := dates[:0]
		for _, date := range dates {
			if _, ok := series[symbol][date]; ok {
				filtered = append(filtered, date)
			}
		}
		dates = filtered
	}
	sort.Strings(dates)
	return dates
}
