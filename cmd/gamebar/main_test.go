package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against fs with an empty config file so the host's
// gamebar.toml never leaks into a test.
func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "gamebar.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_dir = \"/logs\"\n"), 0o644))

	var out, errOut bytes.Buffer
	cmd := newRootCmd(fs)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
}

func TestAnalyzeCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/logs/com.game_GameBar_log_20250315_143245.csv", strings.Join([]string{
		"DateTime,PackageName,FPS,Frame_Time,Battery_Temp,CPU_Usage,CPU_Clock,CPU_Temp,RAM_Usage,RAM_Speed,RAM_Temp,GPU_Usage,GPU_Clock,GPU_Temp",
		"2025-03-15 14:32:45,com.game,60,16.67,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A",
		"2025-03-15 14:33:50,com.game,30,33.33,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A,N/A",
	}, "\n"))

	out, err := run(t, fs, "--format", "plain", "analyze", "/logs/com.game_GameBar_log_20250315_143245.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "package\tcom.game\n")
	assert.Contains(t, out, "duration\t1m 5s\n")
	assert.Contains(t, out, "date\tMar 15, 2025 14:32\n")
	assert.Contains(t, out, "fps_avg\t45.00\n")
}

func TestAnalyzeCommandNoReport(t *testing.T) {
	_, err := run(t, afero.NewMemMapFs(), "analyze", "/logs/missing.csv")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrNoReport))
}

func TestRecordThenAnalyzeAndHistory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/device/sys/class/drm/card0/sde_crtc_fps", "fps: 60.0\n")
	writeFile(t, fs, "/device/sys/class/power_supply/battery/temp", "355\n")

	out, err := run(t, fs,
		"--root", "/device",
		"--package", "com.test",
		"record", "--duration", "50ms",
	)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(path, "/logs/com.test_GameBar_log_"), path)

	out, err = run(t, fs, "--format", "json", "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"package": "com.test"`)
	assert.Contains(t, out, `"total_samples": 1`)

	out, err = run(t, fs, "--format", "plain", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "\tcom.test\t")
}

func TestDetectCommand(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/sys/class/graphics/fb0/fps", "fps: 90\n")

	out, err := run(t, fs, "--format", "plain", "detect")
	require.NoError(t, err)
	assert.Contains(t, out, "battery_temp\tunsupported\t-\n")
	assert.Contains(t, out, "fps\t/sys/class/graphics/fb0/fps\t1000\n")

	out, err = run(t, fs, "--format", "plain", "detect", "--kind", "fps")
	require.NoError(t, err)
	assert.Equal(t, "fps\t/sys/class/graphics/fb0/fps\t1000\n", out)

	_, err = run(t, fs, "detect", "--kind", "gpu")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

// accessLog records every path opened or stat'ed through it.
type accessLog struct {
	afero.Fs
	paths []string
}

func (l *accessLog) Open(name string) (afero.File, error) {
	l.paths = append(l.paths, name)
	return l.Fs.Open(name)
}

func (l *accessLog) Stat(name string) (os.FileInfo, error) {
	l.paths = append(l.paths, name)
	return l.Fs.Stat(name)
}

func TestDetectKindOnlyTouchesThatKind(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/sys/class/graphics/fb0/fps", "fps: 90\n")
	writeFile(t, base, "/sys/class/power_supply/battery/temp", "355\n")
	fs := &accessLog{Fs: base}

	out, err := run(t, fs, "--format", "plain", "detect", "--kind", "fps")
	require.NoError(t, err)
	assert.Equal(t, "fps\t/sys/class/graphics/fb0/fps\t1000\n", out)

	require.NotEmpty(t, fs.paths)
	for _, path := range fs.paths {
		assert.False(t, strings.HasPrefix(path, "/sys/class/power_supply"), path)
		assert.False(t, strings.HasPrefix(path, "/sys/class/thermal"), path)
	}
}

func TestInvalidConfigFlag(t *testing.T) {
	_, err := run(t, afero.NewMemMapFs(), "--interval", "0", "history")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	calls := 0
	err := loop(ctx, 5*time.Millisecond, func(time.Time) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}
