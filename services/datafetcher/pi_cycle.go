package datafetcher

import (
	"context"

	"crypto_tracker_backend/models"

	"github.com/shopspring/decimal"
)

// Pi Cycle Top windows: the indicator compares the 111-day MA against twice
// the 350-day MA. A crossover has historically marked Bitcoin cycle tops.
const (
	piCycleShortWindow = 111
	piCycleLongWindow  = 350
)

// PiCycleFetcher computes the Pi Cycle Top indicator from BTC-USD daily closes
type PiCycleFetcher struct {
	yahoo         *YahooClient
	warnThreshold float64
}

// NewPiCycleFetcher creates a Pi Cycle adapter. warnThreshold is the
// MA111/MA350x2 ratio above which the "top warning" signal fires.
func NewPiCycleFetcher(yahoo *YahooClient, warnThreshold float64) *PiCycleFetcher {
	return &PiCycleFetcher{
		yahoo:         yahoo,
		warnThreshold: warnThreshold,
	}
}

func (f *PiCycleFetcher) Name() string {
	return models.IndicatorPiCycle
}

// Fetch returns one record for the latest observation date. With fewer than
// 350 closes available the record carries the "insufficient history" signal
// instead of a false neutral reading.
func (f *PiCycleFetcher) Fetch(ctx context.Context) ([]models.IndicatorRecord, error) {
	points, err := f.yahoo.DailyCloses(ctx, "BTC-USD", "4y")
	if err != nil {
		return nil, err
	}

	latest := points[len(points)-1]
	record := &models.PiCycle{
		Date:     latest.Date,
		BTCPrice: decimal.NewFromFloat(latest.Close),
	}

	if len(points) < piCycleLongWindow {
		record.Signal = models.SignalInsufficientHistory
		return []models.IndicatorRecord{record}, nil
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}

	ma111 := calculateSMA(closes, piCycleShortWindow)
	ma350x2 := 2 * calculateSMA(closes, piCycleLongWindow)
	ratio := ma111 / ma350x2

	record.MA111 = ma111
	record.MA350x2 = ma350x2
	record.Ratio = ratio
	record.Crossed = ratio >= 1.0

	if ratio >= f.warnThreshold {
		record.Signal = models.SignalTopWarning
	} else {
		record.Signal = models.SignalNeutral
	}

	return []models.IndicatorRecord{record}, nil
}
