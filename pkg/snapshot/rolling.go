package snapshot

import "math"

// meanStd calculates mean and population standard deviation
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	std = math.Sqrt(sumSquares / float64(len(values)))

	return mean, std
}

// zScore returns (x - mean) / std with a zero guard on the denominator
func zScore(x, mean, std float64) float64 {
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	z := (x - mean) / std
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0
	}
	return z
}

// rollingZ standardizes each value against the non-NaN samples of the same
// series within a trailing lookback window ending at that index. Indices with
// a NaN value or fewer than minSamples lookback observations yield 0.
func rollingZ(values []float64, lookback, minSamples int) []float64 {
	out := make([]float64, len(values))
	window := make([]float64, 0, lookback)

	for i := range values {
		if math.IsNaN(values[i]) {
			continue
		}

		window = window[:0]
		start := i - lookback + 1
		if start < 0 {
			start = 0
		}
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				window = append(window, values[j])
			}
		}
		if len(window) < minSamples {
			continue
		}

		mean, std := meanStd(window)
		out[i] = zScore(values[i], mean, std)
	}

	return out
}

// rollingStdScale divides each value by the std of the same series over a
// trailing window ending at that index. Indices with a NaN value, fewer than
// minSamples observations, or zero std yield 0.
func rollingStdScale(values []float64, window, minSamples int) []float64 {
	out := make([]float64, len(values))
	buf := make([]float64, 0, window)

	for i := range values {
		if math.IsNaN(values[i]) {
			continue
		}

		buf = buf[:0]
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				buf = append(buf, values[j])
			}
		}
		if len(buf) < minSamples {
			continue
		}

		_, std := meanStd(buf)
		if std == 0 {
			continue
		}
		v := values[i] / std
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = v
	}

	return out
}

// regressionSlope7 computes the rolling 7-point linear regression slope of a
// series as a weighted sum. Indices with fewer than 7 trailing points are NaN.
func regressionSlope7(values []float64) []float64 {
	// Weights (k-3)/28 for k=0..6 reproduce the least-squares slope of a
	// 7-point series with unit x spacing.
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	for i := 6; i < len(values); i++ {
		sum := 0.0
		for k := 0; k <= 6; k++ {
			sum += (float64(k) - 3) / 28 * values[i-6+k]
		}
		out[i] = sum
	}

	return out
}
