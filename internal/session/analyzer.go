package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"github.com/spf13/afero"
)

const (
	syntheticStepMillis = 1000
	maxLineBytes        = 1 << 20

	fileDateLayout    = "20060102150405"
	sessionDateLayout = "Jan 02, 2006 15:04"
)

var fileDatePattern = regexp.MustCompile(`_(\d{8})_(\d{6})\.[^./]+$`)

// Analyzer turns session logs into Reports. It keeps no state between
// calls and may be used concurrently.
type Analyzer struct {
	fs afero.Fs
}

// NewAnalyzer returns an Analyzer reading from fs.
func NewAnalyzer(fs afero.Fs) *Analyzer {
	return &Analyzer{fs: fs}
}

// Analyze parses the log at path. It returns nil when the file is missing,
// unreadable, has no usable frame-rate sample, or cannot be parsed at all.
func (a *Analyzer) Analyze(path string) (report *Report) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.New().WithData(ErrParsePanic, rec)
			logger.Warn().Str("path", path).Err(err).Msg("Session analysis aborted")
			report = nil
		}
	}()

	r, err := a.analyze(path)
	if err != nil {
		logger.Debug().Str("path", path).Err(err).Msg("No session report")
		return nil
	}

	return r
}

// accumulator collects series while the log is read.
type accumulator struct {
	series Series

	zero      time.Time
	haveZero  bool
	lastFPS   int64
	haveFPS   bool
	line      int
	firstRow  *SampleRow
	lastStamp string
}

func (acc *accumulator) add(row SampleRow) {
	if row.HasTimestamp && !acc.haveZero {
		acc.zero = row.Timestamp
		acc.haveZero = true
	}

	synthetic := int64(acc.line) * syntheticStepMillis

	if row.FPS != nil {
		offset := synthetic
		if row.HasTimestamp {
			offset = row.Timestamp.Sub(acc.zero).Milliseconds()
		}
		appendPoint(&acc.series.FPS, offset, row.FPS)
		acc.lastFPS = offset
		acc.haveFPS = true
	}

	// Secondary channels share the timeline of the latest frame-rate sample.
	offset := synthetic
	if acc.haveZero && acc.haveFPS {
		offset = acc.lastFPS
	}

	appendPoint(&acc.series.FrameTime, offset, row.FrameTimeMs)
	appendPoint(&acc.series.BatteryTemp, offset, row.BatteryTempC)
	appendPoint(&acc.series.CPUUsage, offset, row.CPUUsagePct)
	appendPoint(&acc.series.CPUTemp, offset, row.CPUTempC)
	appendPoint(&acc.series.RAMUsage, offset, row.RAMUsageMB)
	appendPoint(&acc.series.RAMSpeed, offset, row.RAMSpeedMHz)
	appendPoint(&acc.series.RAMTemp, offset, row.RAMTempC)
	appendPoint(&acc.series.GPUUsage, offset, row.GPUUsagePct)
	appendPoint(&acc.series.GPUClock, offset, row.GPUClockMHz)
	appendPoint(&acc.series.GPUTemp, offset, row.GPUTempC)

	for core, mhz := range row.CPUClockByCore {
		if acc.series.CPUClock == nil {
			acc.series.CPUClock = make(map[int]TimeSeries)
		}
		acc.series.CPUClock[core] = append(acc.series.CPUClock[core], Point{OffsetMillis: offset, Value: float64(mhz)})
	}

	if acc.firstRow == nil {
		first := row
		acc.firstRow = &first
	}
	acc.lastStamp = row.RawTimestamp
}

// readLine returns the next line without its terminator. A line longer than
// the reader's buffer is consumed and reported as tooLong with no content.
// io.EOF is returned only once no bytes are left.
func readLine(br *bufio.Reader) (line string, tooLong bool, err error) {
	chunk, err := br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		for err == bufio.ErrBufferFull {
			_, err = br.ReadSlice('\n')
		}
		if err == io.EOF {
			err = nil
		}
		return "", true, err
	}
	if err == io.EOF && len(chunk) > 0 {
		err = nil
	}
	if err != nil {
		return "", false, err
	}

	return strings.TrimRight(string(chunk), "\r\n"), false, nil
}

func (a *Analyzer) analyze(path string) (*Report, error) {
	errFactory := errors.New()

	f, err := a.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errFactory.Wrap(ErrLogMissing, err)
		}
		return nil, errFactory.Wrap(ErrLogUnreadable, err)
	}
	defer f.Close()

	acc := &accumulator{}

	br := bufio.NewReaderSize(f, maxLineBytes)

	first := true
	for {
		line, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errFactory.Wrap(ErrLogUnreadable, err)
		}

		if first {
			first = false
			if !tooLong && strings.Contains(line, HeaderToken) {
				continue
			}
		}

		acc.line++
		if tooLong {
			logger.Debug().Int("line", acc.line).Int("limit", maxLineBytes).Msg("Skipping oversized session log line")
			continue
		}

		row, ok := ParseRow(line)
		if !ok {
			logger.Debug().Int("line", acc.line).Msg("Skipping short session log line")
			continue
		}
		acc.add(row)
	}

	if len(acc.series.FPS) == 0 {
		return nil, errFactory.New(ErrNoFrameRate)
	}

	s := acc.series
	report := &Report{
		FrameRate: FrameRate(s.FPS.Values()),
		CPU: CPUStats{
			Usage: Summarize(s.CPUUsage.Values()),
			Temp:  Summarize(s.CPUTemp.Values()),
		},
		GPU: GPUStats{
			Usage: Summarize(s.GPUUsage.Values()),
			Clock: Summarize(s.GPUClock.Values()),
			Temp:  Summarize(s.GPUTemp.Values()),
		},
		BatteryTemp:     Summarize(s.BatteryTemp.Values()),
		RAMUsage:        Summarize(s.RAMUsage.Values()),
		Series:          s,
		SessionDuration: SessionDuration(acc.firstRow.RawTimestamp, acc.lastStamp),
		TotalSamples:    len(s.FPS),
		PackageName:     acc.firstRow.PackageName,
		SessionDate:     SessionDate(filepath.Base(path)),
		Path:            path,
	}

	logger.Debug().
		Str("path", path).
		Int("lines", acc.line).
		Int("samples", report.TotalSamples).
		Msg("Session log analyzed")

	return report, nil
}

// SessionDuration renders the time between two log timestamps as
// "1h 2m 3s", "2m 3s" or "3s". Unparsable or reversed bounds yield
// UnknownDuration.
func SessionDuration(first, last string) string {
	start, ok := parseTimestamp(first)
	if !ok {
		return UnknownDuration
	}
	end, ok := parseTimestamp(last)
	if !ok {
		return UnknownDuration
	}

	d := end.Sub(start)
	if d < 0 {
		return UnknownDuration
	}

	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// SessionDate extracts the "_yyyyMMdd_HHmmss" suffix of a log file name and
// renders it as "Jan 02, 2006 15:04".
func SessionDate(fileName string) string {
	m := fileDatePattern.FindStringSubmatch(fileName)
	if m == nil {
		return UnknownDate
	}

	t, err := time.Parse(fileDateLayout, m[1]+m[2])
	if err != nil {
		return UnknownDate
	}

	return t.Format(sessionDateLayout)
}
