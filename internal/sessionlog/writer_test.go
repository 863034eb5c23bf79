package sessionlog_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"codeberg.org/mutker/gamebar/internal/session"
	"codeberg.org/mutker/gamebar/internal/sessionlog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var started = time.Date(2025, 3, 15, 14, 32, 45, 0, time.Local)

func newWriter(t *testing.T, fs afero.Fs, cfg sessionlog.Config) *sessionlog.Writer {
	t.Helper()

	w, err := sessionlog.NewWriter(fs, cfg, logger.Default(), started)
	require.NoError(t, err)
	return w
}

func readLines(t *testing.T, fs afero.Fs, path string) []string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func sampleRow(fps string) sessionlog.Row {
	return sessionlog.Row{
		DateTime:    "2025-03-15 14:32:45",
		PackageName: "com.example.game",
		FPS:         fps,
		CPUClock:    "cpu0: 1800 MHz;cpu1: 1900 MHz",
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "com.example.game_GameBar_log_20250315_143245.csv", sessionlog.FileName("com.example.game", started))
	assert.Equal(t, "unknown_GameBar_log_20250315_143245.csv", sessionlog.FileName(" ", started))
	assert.Equal(t, "a_b_GameBar_log_20250315_143245.csv", sessionlog.FileName("a/b", started))
}

func TestNewWriterWritesHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/sdcard/GameBar", Package: "com.example.game", MaxRows: 10})
	defer w.Close()

	assert.Equal(t, "/sdcard/GameBar/com.example.game_GameBar_log_20250315_143245.csv", w.Path())
	assert.Equal(t, []string{strings.Join(session.Header, ",")}, readLines(t, fs, w.Path()))
}

func TestNewWriterInvalidConfig(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := sessionlog.NewWriter(fs, sessionlog.Config{MaxRows: 10}, logger.Default(), started)
	assert.True(t, errors.HasCode(err, sessionlog.ErrInvalidDir))

	_, err = sessionlog.NewWriter(fs, sessionlog.Config{Dir: "/logs", MaxRows: 1}, logger.Default(), started)
	assert.True(t, errors.HasCode(err, sessionlog.ErrInvalidConfig))
}

func TestNewWriterReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := sessionlog.NewWriter(fs, sessionlog.Config{Dir: "/logs", MaxRows: 10}, logger.Default(), started)
	assert.True(t, errors.HasCode(err, sessionlog.ErrCreateFailed))
}

func TestAppendWithoutFlushIntervalWritesImmediately(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "pkg", MaxRows: 10})

	require.NoError(t, w.Append(sampleRow("60")))

	lines := readLines(t, fs, w.Path())
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-03-15 14:32:45,com.example.game,60,N/A,N/A,N/A,cpu0: 1800 MHz;cpu1: 1900 MHz,N/A,N/A,N/A,N/A,N/A,N/A,N/A", lines[1])
	assert.Equal(t, 1, w.Written())
	require.NoError(t, w.Close())
}

func TestCloseFlushesBufferedRows(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "pkg", MaxRows: 10, FlushInterval: time.Hour})

	require.NoError(t, w.Append(sampleRow("60")))
	require.NoError(t, w.Append(sampleRow("59")))
	assert.Len(t, readLines(t, fs, w.Path()), 1, "rows stay buffered until a flush")

	require.NoError(t, w.Close())
	assert.Len(t, readLines(t, fs, w.Path()), 3)
	assert.Equal(t, 2, w.Written())

	require.NoError(t, w.Close(), "second close is a no-op")
	err := w.Append(sampleRow("1"))
	assert.True(t, errors.HasCode(err, sessionlog.ErrClosed))
}

func TestTickerFlushes(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "pkg", MaxRows: 10, FlushInterval: 10 * time.Millisecond})
	defer w.Close()

	require.NoError(t, w.Append(sampleRow("60")))

	assert.Eventually(t, func() bool {
		return w.Written() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestFullBufferDropsOldestHalf(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "pkg", MaxRows: 4, FlushInterval: time.Hour})

	// Without the file every flush fails and rows pile up.
	require.NoError(t, fs.Remove(w.Path()))

	for _, fps := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, w.Append(sampleRow(fps)))
	}
	assert.Equal(t, 2, w.Dropped())

	require.NoError(t, afero.WriteFile(fs, w.Path(), nil, 0o644))
	require.NoError(t, w.Flush())

	lines := readLines(t, fs, w.Path())
	require.Len(t, lines, 3)
	for i, want := range []string{"3", "4", "5"} {
		assert.Equal(t, want, strings.Split(lines[i], ",")[session.ColFPS])
	}
	require.NoError(t, w.Close())
}

func TestFlushFailureKeepsRows(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "pkg", MaxRows: 10, FlushInterval: time.Hour})
	require.NoError(t, fs.Remove(w.Path()))

	require.NoError(t, w.Append(sampleRow("60")))
	err := w.Flush()
	assert.True(t, errors.HasCode(err, sessionlog.ErrWriteFailed))

	err = w.Close()
	assert.True(t, errors.HasCode(err, sessionlog.ErrCloseFailed))
	assert.Equal(t, 0, w.Written())
}

func TestConcurrentAppend(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "pkg", MaxRows: 1000, FlushInterval: time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(t, w.Append(sampleRow("60")))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, w.Close())
	assert.Len(t, readLines(t, fs, w.Path()), 201)
}

func TestWrittenLogIsAnalyzable(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := newWriter(t, fs, sessionlog.Config{Dir: "/logs", Package: "com.example.game", MaxRows: 10})

	for i, fps := range []string{"60", "30", "90"} {
		row := sampleRow(fps)
		row.DateTime = started.Add(time.Duration(i) * time.Second).Format(session.TimestampLayout)
		require.NoError(t, w.Append(row))
	}
	require.NoError(t, w.Close())

	report := session.NewAnalyzer(fs).Analyze(w.Path())
	require.NotNil(t, report)
	assert.Equal(t, 3, report.TotalSamples)
	assert.Equal(t, "2s", report.SessionDuration)
	assert.Equal(t, "Mar 15, 2025 14:32", report.SessionDate)
	assert.Equal(t, []int{0, 1}, report.Series.Cores())
}
