package probe

import "codeberg.org/mutker/gamebar/internal/config"

// Paths locates the nodes read by a Sampler. Nodes discovered at runtime
// (fps, battery and CPU temperature) come from the sensor resolver instead.
type Paths struct {
	CPUBase     string
	ProcStat    string
	ProcMeminfo string

	GPUUsage        string
	GPUClock        string
	GPUClockDivider int
	GPUTemp         string
	GPUTempDivider  int

	RAMFreq        string
	RAMTemp        string
	RAMTempDivider int
}

// PathsFromConfig copies the node locations out of cfg.
func PathsFromConfig(cfg *config.Config) Paths {
	return Paths{
		CPUBase:         cfg.CPUBasePath,
		ProcStat:        cfg.ProcStatPath,
		ProcMeminfo:     cfg.ProcMeminfoPath,
		GPUUsage:        cfg.GPUUsagePath,
		GPUClock:        cfg.GPUClockPath,
		GPUClockDivider: cfg.GPUClockDivider,
		GPUTemp:         cfg.GPUTempPath,
		GPUTempDivider:  cfg.GPUTempDivider,
		RAMFreq:         cfg.RAMFreqPath,
		RAMTemp:         cfg.RAMTempPath,
		RAMTempDivider:  cfg.RAMTempDivider,
	}
}
