package session

const (
	// UnknownDuration is reported when the session bounds cannot be
	// established from the log's timestamps.
	UnknownDuration = "Unknown"
	// UnknownDate is reported when the log file name carries no date.
	UnknownDate = "Unknown Date"
)

// CPUStats summarises CPU channels.
type CPUStats struct {
	Usage Summary
	Temp  Summary
}

// GPUStats summarises GPU channels.
type GPUStats struct {
	Usage Summary
	Clock Summary
	Temp  Summary
}

// Report is the analysis of one session log. It is built once by Analyze
// and must be treated as read-only by its consumers.
type Report struct {
	FrameRate   FrameRateStats
	CPU         CPUStats
	GPU         GPUStats
	BatteryTemp Summary
	RAMUsage    Summary

	Series Series

	SessionDuration string
	TotalSamples    int
	PackageName     string
	SessionDate     string
	Path            string
}
