package session

import (
	"math"
	"sort"
)

const (
	// SmoothThreshold is the frame rate at or above which a sample counts
	// as smooth.
	SmoothThreshold = 45.0

	lowPercentile      = 0.01
	lowTenthPercentile = 0.001

	// Absorbs float error in n*p so that e.g. 300*0.01 counts 3 samples.
	percentileEpsilon = 1e-9
)

// Summary is min/max/mean of a channel. A channel without samples reports
// zeros.
type Summary struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int
}

// FrameRateStats describes frame pacing over a session.
type FrameRateStats struct {
	Max               float64
	Min               float64
	Avg               float64
	Variance          float64
	StandardDeviation float64
	Low1Percent       float64
	Low01Percent      float64
	// Smoothness is the share of samples at or above SmoothThreshold, 0-100.
	Smoothness float64
}

// Summarize computes min/max/mean of values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	s := Summary{Min: values[0], Max: values[0], Count: len(values)}
	sum := 0.0
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Avg = sum / float64(len(values))

	return s
}

// FrameRate computes frame pacing statistics. Values are expected to be
// strictly positive.
func FrameRate(values []float64) FrameRateStats {
	if len(values) == 0 {
		return FrameRateStats{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	summary := Summarize(values)

	variance := 0.0
	smooth := 0
	for _, v := range values {
		d := v - summary.Avg
		variance += d * d
		if v >= SmoothThreshold {
			smooth++
		}
	}
	variance /= float64(len(values))

	return FrameRateStats{
		Max:               sorted[len(sorted)-1],
		Min:               sorted[0],
		Avg:               summary.Avg,
		Variance:          variance,
		StandardDeviation: math.Sqrt(variance),
		Low1Percent:       PercentileLow(sorted, lowPercentile),
		Low01Percent:      PercentileLow(sorted, lowTenthPercentile),
		Smoothness:        float64(smooth) / float64(len(values)) * 100,
	}
}

// PercentileLow returns the mean of the worst ceil(n*p) samples, at least
// one, of an ascending slice.
func PercentileLow(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	count := int(math.Ceil(float64(len(sorted))*p - percentileEpsilon))
	if count < 1 {
		count = 1
	}
	if count > len(sorted) {
		count = len(sorted)
	}

	sum := 0.0
	for _, v := range sorted[:count] {
		sum += v
	}
	return sum / float64(count)
}
