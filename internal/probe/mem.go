package probe

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/spf13/afero"
)

// ramUsedMB is MemTotal minus MemAvailable from /proc/meminfo.
func ramUsedMB(fs afero.Fs, path string) (int64, error) {
	errFactory := errors.New()

	if path == "" {
		return 0, errFactory.New(ErrNotConfigured)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, errFactory.Wrap(ErrNodeUnreadable, err)
	}

	var total, available int64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "MemTotal:":
			total, _ = strconv.ParseInt(fields[1], 10, 64)
		case "MemAvailable:":
			available, _ = strconv.ParseInt(fields[1], 10, 64)
		}
	}

	if total <= 0 || available > total {
		return 0, errFactory.WithData(ErrNodeMalformed, path)
	}

	return (total - available) / 1024, nil
}

// formatRAMSpeed renders a kHz reading as "1.866 GHz" or "933 MHz".
func formatRAMSpeed(khz int64) string {
	mhz := float64(khz) / 1000
	if mhz >= 1000 {
		return fmt.Sprintf("%.3f GHz", mhz/1000)
	}
	return fmt.Sprintf("%.0f MHz", mhz)
}
