package sensor_test

import (
	"testing"

	"codeberg.org/mutker/gamebar/internal/sensor"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZone(t *testing.T, fs afero.Fs, dir, label, temp string) {
	t.Helper()

	writeNode(t, fs, dir+"/type", label+"\n")
	writeNode(t, fs, dir+"/temp", temp+"\n")
}

func TestCPUTempPrefersPriorityOverKeyword(t *testing.T) {
	fs := afero.NewMemMapFs()
	// Listed first, only a keyword match.
	writeZone(t, fs, "/sys/class/thermal/thermal_zone0", "soc_max", "45000")
	writeZone(t, fs, "/sys/class/thermal/thermal_zone7", "cpuss-1", "52000")

	got, ok := sensor.NewResolver(fs).ResolveCPUTempPath()
	require.True(t, ok)
	assert.Equal(t, "/sys/class/thermal/thermal_zone7/temp", got)
}

func TestCPUTempPriorityOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZone(t, fs, "/sys/class/thermal/thermal_zone1", "cpu-cluster0", "50000")
	writeZone(t, fs, "/sys/class/thermal/thermal_zone2", "cpu", "50000")
	writeZone(t, fs, "/sys/class/thermal/thermal_zone3", "cpuss-0", "50000")
	writeZone(t, fs, "/sys/devices/virtual/thermal/thermal_zone9", "cpu-thermal", "50000")

	r := sensor.NewResolver(fs)

	got, ok := r.ResolvePath(sensor.KindCPUTemp)
	require.True(t, ok)
	assert.Equal(t, "/sys/devices/virtual/thermal/thermal_zone9/temp", got,
		"exact label in the second root outranks prefixed labels in the first")
}

func TestCPUTempKeywordFallbackRequiresPlausibleTemp(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZone(t, fs, "/sys/class/thermal/thermal_zone0", "tsens_tz_sensor0", "150000")
	writeZone(t, fs, "/sys/class/thermal/thermal_zone1", "battery", "35000")
	writeZone(t, fs, "/sys/class/thermal/thermal_zone2", "apc1-cpu0-usr", "48000")

	got, ok := sensor.NewResolver(fs).ResolveCPUTempPath()
	require.True(t, ok)
	assert.Equal(t, "/sys/class/thermal/thermal_zone2/temp", got)
}

func TestCPUTempKeywordWindowIsInclusive(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZone(t, fs, "/sys/class/thermal/thermal_zone4", "soc", "90000")

	got, ok := sensor.NewResolver(fs).ResolveCPUTempPath()
	require.True(t, ok)
	assert.Equal(t, "/sys/class/thermal/thermal_zone4/temp", got)
}

func TestCPUTempRequiresBothFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeNode(t, fs, "/sys/class/thermal/thermal_zone0/type", "cpu-thermal")
	writeNode(t, fs, "/sys/class/thermal/cooling_device0/type", "cpu")

	_, ok := sensor.NewResolver(fs).ResolveCPUTempPath()
	assert.False(t, ok)
}

func TestCPUTempNotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZone(t, fs, "/sys/class/thermal/thermal_zone0", "battery", "30000")
	writeZone(t, fs, "/sys/class/thermal/thermal_zone1", "cpu_gpu_bridge", "5")

	r := sensor.NewResolver(fs)
	_, ok := r.ResolveCPUTempPath()
	assert.False(t, ok)
	assert.False(t, r.IsSupported(sensor.KindCPUTemp))
}

func TestCPUTempCachedUntilReset(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZone(t, fs, "/sys/class/thermal/thermal_zone0", "soc", "40000")

	r := sensor.NewResolver(fs)
	first, ok := r.ResolveCPUTempPath()
	require.True(t, ok)

	writeZone(t, fs, "/sys/class/thermal/thermal_zone5", "cpu-thermal", "40000")

	second, _ := r.ResolveCPUTempPath()
	assert.Equal(t, first, second)

	r.Reset()
	third, _ := r.ResolveCPUTempPath()
	assert.Equal(t, "/sys/class/thermal/thermal_zone5/temp", third)
}

func TestWithThermalRoots(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeZone(t, fs, "/custom/zones/z0", "cpu", "40000")

	got, ok := sensor.NewResolver(fs, sensor.WithThermalRoots("/custom/zones")).ResolveCPUTempPath()
	require.True(t, ok)
	assert.Equal(t, "/custom/zones/z0/temp", got)
}
