package datafetcher

// Moving-average helpers over chronological (oldest first) series.
// Returning 0 on insufficient data matches how the rest of the codebase
// treats unavailable indicator values.

// calculateSMA returns the simple moving average of the last `period` values
func calculateSMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period)
}

// calculateSMASeries returns the rolling SMA series; entry i covers
// values[i..i+window-1], so the result is len(values)-window+1 long
func calculateSMASeries(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}

	result := make([]float64, 0, len(values)-window+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result = append(result, sum/float64(window))
		}
	}
	return result
}

// calculateEMA returns the latest exponential moving average, seeded with
// the SMA of the first `period` values
func calculateEMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
	}
	return ema
}
