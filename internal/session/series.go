package session

import "sort"

// Point is one sample, OffsetMillis after the session's first known
// timestamp.
type Point struct {
	OffsetMillis int64
	Value        float64
}

// TimeSeries keeps points in file order. Out-of-order source timestamps are
// kept as they are.
type TimeSeries []Point

// Values returns the sample values in order.
func (s TimeSeries) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Series holds every per-metric time series of a session.
type Series struct {
	FPS         TimeSeries
	FrameTime   TimeSeries
	BatteryTemp TimeSeries
	CPUUsage    TimeSeries
	CPUTemp     TimeSeries
	CPUClock    map[int]TimeSeries
	RAMUsage    TimeSeries
	RAMSpeed    TimeSeries
	RAMTemp     TimeSeries
	GPUUsage    TimeSeries
	GPUClock    TimeSeries
	GPUTemp     TimeSeries
}

// Cores returns the CPU core indices with clock data, ascending.
func (s Series) Cores() []int {
	cores := make([]int, 0, len(s.CPUClock))
	for core := range s.CPUClock {
		cores = append(cores, core)
	}
	sort.Ints(cores)
	return cores
}

func appendPoint(series *TimeSeries, offset int64, v *float64) {
	if v == nil {
		return
	}
	*series = append(*series, Point{OffsetMillis: offset, Value: *v})
}
