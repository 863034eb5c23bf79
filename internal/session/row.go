package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Column layout of a session log line.
const (
	ColDateTime = iota
	ColPackageName
	ColFPS
	ColFrameTime
	ColBatteryTemp
	ColCPUUsage
	ColCPUClock
	ColCPUTemp
	ColRAMUsage
	ColRAMSpeed
	ColRAMTemp
	ColGPUUsage
	ColGPUClock
	ColGPUTemp

	ColumnCount
)

const (
	// Delimiter separates columns in a session log line.
	Delimiter = ","
	// HeaderToken marks the optional header line.
	HeaderToken = "DateTime"
	// TimestampLayout is the DateTime column format (yyyy-MM-dd HH:mm:ss).
	TimestampLayout = "2006-01-02 15:04:05"

	minColumns = ColFPS + 1
)

// Header is the column header written at the top of a session log.
var Header = []string{
	"DateTime",
	"PackageName",
	"FPS",
	"Frame_Time",
	"Battery_Temp",
	"CPU_Usage",
	"CPU_Clock",
	"CPU_Temp",
	"RAM_Usage",
	"RAM_Speed",
	"RAM_Temp",
	"GPU_Usage",
	"GPU_Clock",
	"GPU_Temp",
}

var (
	coreClockPattern = regexp.MustCompile(`(\d+)\s*MHz`)
	coreLabelPattern = regexp.MustCompile(`cpu(\d+)`)
	ramSpeedPattern  = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*(GHz|MHz)$`)
)

// SampleRow is one parsed log line. Nil fields were empty, a sentinel, or
// unparsable.
type SampleRow struct {
	Timestamp    time.Time
	HasTimestamp bool
	RawTimestamp string
	PackageName  string

	FPS            *float64
	FrameTimeMs    *float64
	BatteryTempC   *float64
	CPUUsagePct    *float64
	CPUClockByCore map[int]int
	CPUTempC       *float64
	RAMUsageMB     *float64
	RAMSpeedMHz    *float64
	RAMTempC       *float64
	GPUUsagePct    *float64
	GPUClockMHz    *float64
	GPUTempC       *float64
}

// fieldParser turns one trimmed, non-sentinel column into a value.
type fieldParser func(string) (float64, bool)

func isSentinel(s string) bool {
	return s == "" || s == "N/A" || s == "-"
}

func number(accept func(float64) bool) fieldParser {
	return func(s string) (float64, bool) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || !accept(v) {
			return 0, false
		}
		return v, true
	}
}

func withSuffix(parse fieldParser, suffixes ...string) fieldParser {
	return func(s string) (float64, bool) {
		for _, suffix := range suffixes {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
		return parse(s)
	}
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }

var (
	parsePositive    = number(positive)
	parseNonNegative = number(nonNegative)
	parseTemperature = withSuffix(parsePositive, "°C", "C")
	parsePercent     = withSuffix(parseNonNegative, "%")
)

func parseRAMSpeed(s string) (float64, bool) {
	if v, ok := parsePositive(s); ok {
		return v, true
	}

	m := ramSpeedPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	v, ok := parsePositive(m[1])
	if !ok {
		return 0, false
	}
	if m[2] == "GHz" {
		v *= 1000
	}
	return v, true
}

// field applies parse to column idx. Missing columns and sentinels yield nil.
func field(columns []string, idx int, parse fieldParser) *float64 {
	if idx >= len(columns) {
		return nil
	}

	s := strings.TrimSpace(columns[idx])
	if isSentinel(s) {
		return nil
	}

	v, ok := parse(s)
	if !ok {
		return nil
	}
	return &v
}

// parseCPUClock extracts per-core MHz readings from "cpu0: 1800 MHz;cpu1: ..."
// fragments. Fragments without a reading are skipped; a fragment without a
// cpuN label is keyed by its position.
func parseCPUClock(columns []string) map[int]int {
	if ColCPUClock >= len(columns) {
		return nil
	}

	s := strings.TrimSpace(columns[ColCPUClock])
	if isSentinel(s) {
		return nil
	}

	var clocks map[int]int
	for i, fragment := range strings.Split(s, ";") {
		m := coreClockPattern.FindStringSubmatch(fragment)
		if m == nil {
			continue
		}

		mhz, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		core := i
		if label := coreLabelPattern.FindStringSubmatch(fragment); label != nil {
			if n, err := strconv.Atoi(label[1]); err == nil {
				core = n
			}
		}

		if clocks == nil {
			clocks = make(map[int]int)
		}
		clocks[core] = mhz
	}

	return clocks
}

func parseTimestamp(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseRow splits line into columns and parses each field independently.
// It returns false only when the line is too short to carry a frame rate.
func ParseRow(line string) (SampleRow, bool) {
	columns := strings.Split(line, Delimiter)
	if len(columns) < minColumns {
		return SampleRow{}, false
	}

	row := SampleRow{
		RawTimestamp: strings.TrimSpace(columns[ColDateTime]),
		PackageName:  strings.TrimSpace(columns[ColPackageName]),

		FPS:            field(columns, ColFPS, parsePositive),
		FrameTimeMs:    field(columns, ColFrameTime, parsePositive),
		BatteryTempC:   field(columns, ColBatteryTemp, parseTemperature),
		CPUUsagePct:    field(columns, ColCPUUsage, parsePercent),
		CPUClockByCore: parseCPUClock(columns),
		CPUTempC:       field(columns, ColCPUTemp, parseTemperature),
		RAMUsageMB:     field(columns, ColRAMUsage, parseNonNegative),
		RAMSpeedMHz:    field(columns, ColRAMSpeed, parseRAMSpeed),
		RAMTempC:       field(columns, ColRAMTemp, parseTemperature),
		GPUUsagePct:    field(columns, ColGPUUsage, parsePercent),
		GPUClockMHz:    field(columns, ColGPUClock, parsePositive),
		GPUTempC:       field(columns, ColGPUTemp, parseTemperature),
	}
	row.Timestamp, row.HasTimestamp = parseTimestamp(row.RawTimestamp)

	return row, true
}
