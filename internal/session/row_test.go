package session_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/gamebar/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowFieldsAreIndependent(t *testing.T) {
	row, ok := session.ParseRow("2025-01-01 10:00:00, com.game ,60,bogus,N/A,-3,,55,abc,933 MHz,40.5,12%,NaN,-")
	require.True(t, ok)

	assert.True(t, row.HasTimestamp)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), row.Timestamp)
	assert.Equal(t, "com.game", row.PackageName)

	require.NotNil(t, row.FPS)
	assert.Equal(t, 60.0, *row.FPS)
	assert.Nil(t, row.FrameTimeMs)
	assert.Nil(t, row.BatteryTempC)
	assert.Nil(t, row.CPUUsagePct, "negative usage is rejected")
	assert.Nil(t, row.CPUClockByCore)
	require.NotNil(t, row.CPUTempC)
	assert.Equal(t, 55.0, *row.CPUTempC)
	assert.Nil(t, row.RAMUsageMB)
	require.NotNil(t, row.RAMSpeedMHz)
	assert.Equal(t, 933.0, *row.RAMSpeedMHz)
	require.NotNil(t, row.RAMTempC)
	assert.Equal(t, 40.5, *row.RAMTempC)
	require.NotNil(t, row.GPUUsagePct)
	assert.Equal(t, 12.0, *row.GPUUsagePct)
	assert.Nil(t, row.GPUClockMHz, "NaN is rejected")
	assert.Nil(t, row.GPUTempC)
}

func TestParseRowShortLines(t *testing.T) {
	_, ok := session.ParseRow("2025-01-01 10:00:00,pkg")
	assert.False(t, ok)

	row, ok := session.ParseRow("2025-01-01 10:00:00,pkg,59.5")
	require.True(t, ok)
	require.NotNil(t, row.FPS)
	assert.Equal(t, 59.5, *row.FPS)
	assert.Nil(t, row.GPUTempC)
}

func TestParseRowCPUClockLabels(t *testing.T) {
	row, ok := session.ParseRow("t,pkg,60,N/A,N/A,N/A,cpu4: 2400 MHz; 1200 MHz;cpu7: offline or frequency not available")
	require.True(t, ok)

	assert.Equal(t, map[int]int{4: 2400, 1: 1200}, row.CPUClockByCore)
	assert.False(t, row.HasTimestamp)
}
