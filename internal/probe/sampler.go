package probe

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"codeberg.org/mutker/gamebar/internal/sensor"
	"codeberg.org/mutker/gamebar/internal/session"
	"codeberg.org/mutker/gamebar/internal/sessionlog"
	"github.com/spf13/afero"
)

const (
	// CPU temperatures outside (0, maxCPUTemp) are treated as bogus reads.
	maxCPUTemp = 150.0
)

// Sampler reads one row of device metrics at a time. CPU usage is computed
// from the /proc/stat delta since the previous Sample, so the first sample
// of a session has no usage value.
type Sampler struct {
	fs      afero.Fs
	sensors *sensor.Resolver
	paths   Paths
	logger  logger.Logger

	mu      sync.Mutex
	prevCPU *cpuReading
}

func NewSampler(fs afero.Fs, sensors *sensor.Resolver, paths Paths, log logger.Logger) *Sampler {
	return &Sampler{
		fs:      fs,
		sensors: sensors,
		paths:   paths,
		logger:  log,
	}
}

// Sample reads every metric for pkg at now. Values that cannot be read are
// left as N/A.
func (s *Sampler) Sample(pkg string, now time.Time) sessionlog.Row {
	row := sessionlog.Row{
		DateTime:    now.Format(session.TimestampLayout),
		PackageName: pkg,
	}

	fps, err := s.FPS()
	if err == nil {
		row.FPS = strconv.FormatFloat(fps, 'f', 1, 64)
		row.FrameTime = strconv.FormatFloat(1000/fps, 'f', 2, 64)
	}
	s.note("fps", err)

	row.BatteryTemp = s.text("battery_temp", func() (string, error) {
		v, err := s.sensors.Value(sensor.KindBatteryTemp)
		return formatTemp(v), err
	})
	row.CPUUsage = s.text("cpu_usage", func() (string, error) {
		v, err := s.CPUUsage()
		return strconv.Itoa(v), err
	})
	row.CPUClock = s.text("cpu_clock", func() (string, error) {
		return coreClocks(s.fs, s.paths.CPUBase)
	})
	row.CPUTemp = s.text("cpu_temp", func() (string, error) {
		v, err := s.CPUTemp()
		return formatTemp(v), err
	})
	row.RAMUsage = s.text("ram_usage", func() (string, error) {
		v, err := ramUsedMB(s.fs, s.paths.ProcMeminfo)
		return strconv.FormatInt(v, 10), err
	})
	row.RAMSpeed = s.text("ram_speed", func() (string, error) {
		v, err := readInt(s.fs, s.paths.RAMFreq)
		return formatRAMSpeed(v), err
	})
	row.RAMTemp = s.text("ram_temp", func() (string, error) {
		v, err := readInt(s.fs, s.paths.RAMTemp)
		return formatTemp(divide(v, s.paths.RAMTempDivider)), err
	})
	row.GPUUsage = s.text("gpu_usage", func() (string, error) {
		v, err := s.GPUUsage()
		return strconv.Itoa(v), err
	})
	row.GPUClock = s.text("gpu_clock", func() (string, error) {
		v, err := readInt(s.fs, s.paths.GPUClock)
		return strconv.FormatInt(int64(divide(v, s.paths.GPUClockDivider)), 10), err
	})
	row.GPUTemp = s.text("gpu_temp", func() (string, error) {
		v, err := readInt(s.fs, s.paths.GPUTemp)
		return formatTemp(divide(v, s.paths.GPUTempDivider)), err
	})

	return row
}

// FPS reads the resolved frame-rate node. Both "fps: 59.9 ..." and a bare
// number are accepted.
func (s *Sampler) FPS() (float64, error) {
	raw, err := s.sensors.ReadRaw(sensor.KindFPS)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(raw)
	if len(fields) > 1 && strings.EqualFold(fields[0], "fps:") {
		fields = fields[1:]
	}

	fps, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrNodeMalformed, err)
	}
	if fps <= 0 {
		return 0, errors.New().WithData(ErrOutOfRange, fps)
	}

	return fps, nil
}

// CPUUsage returns the busy percentage since the previous call.
func (s *Sampler) CPUUsage() (int, error) {
	cur, err := readCPUStats(s.fs, s.paths.ProcStat)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prevCPU
	s.prevCPU = &cur
	if prev == nil {
		return 0, errors.New().New(ErrNoBaseline)
	}

	pct, ok := cpuPercent(*prev, cur)
	if !ok {
		return 0, errors.New().New(ErrNoBaseline)
	}
	return pct, nil
}

// CPUTemp reads the resolved CPU thermal zone in degrees Celsius.
func (s *Sampler) CPUTemp() (float64, error) {
	v, err := s.sensors.Value(sensor.KindCPUTemp)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v >= maxCPUTemp {
		return 0, errors.New().WithData(ErrOutOfRange, v)
	}
	return v, nil
}

// GPUUsage reads the configured busy-percentage node; a trailing % is
// tolerated.
func (s *Sampler) GPUUsage() (int, error) {
	line, err := readLine(s.fs, s.paths.GPUUsage)
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(line, "%")))
	if err != nil {
		return 0, errors.New().Wrap(ErrNodeMalformed, err)
	}
	return v, nil
}

// text runs read and maps a failure to an empty field, which the log
// writer renders as N/A.
func (s *Sampler) text(metric string, read func() (string, error)) string {
	v, err := read()
	s.note(metric, err)
	if err != nil {
		return ""
	}
	return v
}

// note logs a failed read. A missing node is normal on many devices, so
// everything stays at debug level.
func (s *Sampler) note(metric string, err error) {
	if err == nil {
		return
	}
	s.logger.Debug().
		Str("metric", metric).
		Str("error_code", string(errors.CodeOf(err))).
		Err(err).
		Msg("Metric unavailable")
}

func formatTemp(celsius float64) string {
	return fmt.Sprintf("%.1f", celsius)
}
