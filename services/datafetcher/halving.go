package datafetcher

import (
	"context"
	"time"

	"crypto_tracker_backend/models"
)

// Bitcoin halving dates, oldest first. When the current date passes the last
// entry the next halving is projected four years out.
var halvingDates = []string{
	"2012-11-28",
	"2016-07-09",
	"2020-05-11",
	"2024-04-20",
}

// projectedTopOffsetDays is how long after a halving cycle tops have
// historically occurred
const projectedTopOffsetDays = 520

// HalvingFetcher projects the halving cycle from calendar arithmetic alone;
// it makes no external calls
type HalvingFetcher struct {
	now func() time.Time
}

// NewHalvingFetcher creates a halving cycle adapter
func NewHalvingFetcher() *HalvingFetcher {
	return &HalvingFetcher{now: time.Now}
}

func (f *HalvingFetcher) Name() string {
	return models.IndicatorHalving
}

// Fetch returns today's halving cycle projection
func (f *HalvingFetcher) Fetch(ctx context.Context) ([]models.IndicatorRecord, error) {
	today := civilDay(f.now().UTC())

	var lastHalving time.Time
	var nextHalving time.Time
	haveNext := false

	for _, raw := range halvingDates {
		date, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return nil, schemaError("invalid halving date %q: %v", raw, err)
		}
		if !date.After(today) {
			lastHalving = date
		} else if !haveNext {
			nextHalving = date
			haveNext = true
		}
	}

	if lastHalving.IsZero() {
		return nil, schemaError("current date %s precedes the first recorded halving",
			today.Format(models.DateLayout))
	}
	if !haveNext {
		// Past the last known halving: project four years out
		nextHalving = lastHalving.AddDate(0, 0, 4*365)
	}

	projectedTop := lastHalving.AddDate(0, 0, projectedTopOffsetDays)

	record := &models.Halving{
		Date:                  today.Format(models.DateLayout),
		LastHalvingDate:       lastHalving.Format(models.DateLayout),
		DaysSinceHalving:      daysBetween(lastHalving, today),
		NextHalvingDate:       nextHalving.Format(models.DateLayout),
		DaysUntilNextHalving:  daysBetween(today, nextHalving),
		ProjectedTopDate:      projectedTop.Format(models.DateLayout),
		DaysUntilProjectedTop: daysBetween(today, projectedTop),
	}

	return []models.IndicatorRecord{record}, nil
}

// civilDay truncates a time to its UTC calendar day
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the exact calendar-day difference from a to b
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
