package sensor

// Candidate nodes, most specific first.
var (
	batteryTempPaths = []string{
		"/sys/class/power_supply/battery/temp",
		"/sys/class/power_supply/battery/batt_temp",
		"/sys/class/power_supply/bms/temp",
		"/sys/class/oplus_chg/battery/temp",
		"/sys/class/oplus_chg/battery/batt_temp",
		"/sys/class/oplus_chg/battery/temperature",
		"/sys/class/oplus_chg/bq27541/temp",
		"/sys/class/thermal/thermal_zone0/temp",
	}

	fpsPaths = []string{
		"/sys/class/drm/card0/sde_crtc_fps",
		"/sys/class/graphics/fb0/fps",
		"/sys/class/graphics/fb0/measured_fps",
		"/sys/class/drm/sde-crtc-0/measured_fps",
	}

	thermalRoots = []string{
		"/sys/class/thermal",
		"/sys/devices/virtual/thermal",
	}
)

// DefaultCandidates returns a copy of the built-in candidate list for kind.
// KindCPUTemp has no flat list; it is found by scanning thermal roots.
func DefaultCandidates(kind Kind) []string {
	switch kind {
	case KindBatteryTemp:
		return append([]string(nil), batteryTempPaths...)
	case KindFPS:
		return append([]string(nil), fpsPaths...)
	default:
		return nil
	}
}

// DefaultThermalRoots returns a copy of the directories scanned for CPU
// thermal zones.
func DefaultThermalRoots() []string {
	return append([]string(nil), thermalRoots...)
}
