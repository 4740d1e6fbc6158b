package feature

import "math"

// NormalizeChanges calculates normalized period-over-period relative changes
// Returns len(values)-1 values, each in range [-1, 1] after clipping
func NormalizeChanges(values []float64, clipStd float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	changes := relativeChanges(values)

	mean, std := meanStd(changes)
	if std == 0 {
		std = 1
	}

	// Z-score normalization with clipping
	for i := range changes {
		z := (changes[i] - mean) / std
		if z > clipStd {
			z = clipStd
		}
		if z < -clipStd {
			z = -clipStd
		}
		// Scale to [-1, 1]
		changes[i] = z / clipStd
	}

	return changes
}

// MinMaxNormalize scales values to [0, 1] range
func MinMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	rangeVal := max - min
	if rangeVal == 0 {
		rangeVal = 1
	}

	result := make([]float64, len(values))
	for i, v := range values {
		result[i] = (v - min) / rangeVal
	}

	return result
}

// Resample stretches or shrinks values to targetLen points by linear interpolation
func Resample(values []float64, targetLen int) []float64 {
	if targetLen <= 0 || len(values) == 0 {
		return nil
	}
	result := make([]float64, targetLen)
	if len(values) == 1 || targetLen == 1 {
		for i := range result {
			result[i] = values[0]
		}
		return result
	}

	step := float64(len(values)-1) / float64(targetLen-1)
	for i := range result {
		pos := float64(i) * step
		lo := int(math.Floor(pos))
		if lo >= len(values)-1 {
			result[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(lo)
		result[i] = values[lo]*(1-frac) + values[lo+1]*frac
	}

	return result
}

// relativeChanges returns (v[i]-v[i-1])/v[i-1], 0 where the previous value is 0
func relativeChanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return out
}

// meanStd calculates mean and standard deviation
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
	variance := sumSquares / float64(len(values))
	std = math.Sqrt(variance)

	return mean, std
}
