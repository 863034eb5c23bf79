package probe

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/spf13/afero"
)

var coreDirPattern = regexp.MustCompile(`^cpu(\d+)$`)

// cpuReading holds cumulative jiffies from the aggregate line of /proc/stat:
//
//	cpu  user nice system idle iowait irq softirq steal ...
type cpuReading struct {
	busy uint64
	idle uint64
}

func readCPUStats(fs afero.Fs, path string) (cpuReading, error) {
	line, err := readLine(fs, path)
	if err != nil {
		return cpuReading{}, err
	}

	fields := strings.Fields(line)
	if len(fields) < 8 || fields[0] != "cpu" {
		return cpuReading{}, errors.New().WithData(ErrNodeMalformed, line)
	}

	values := make([]uint64, 8)
	for i := range values {
		if i+1 >= len(fields) {
			break
		}
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return cpuReading{}, errors.New().Wrap(ErrNodeMalformed, err)
		}
		values[i] = v
	}

	// user nice system irq softirq steal / idle iowait
	busy := values[0] + values[1] + values[2] + values[5] + values[6] + values[7]
	idle := values[3] + values[4]

	return cpuReading{busy: busy, idle: idle}, nil
}

// cpuPercent is the busy share between two readings. It reports false when
// no time has passed or the counters went backwards.
func cpuPercent(prev, cur cpuReading) (int, bool) {
	if cur.busy < prev.busy || cur.idle < prev.idle {
		return 0, false
	}

	busy := cur.busy - prev.busy
	total := busy + cur.idle - prev.idle
	if total == 0 {
		return 0, false
	}

	return int(busy * 100 / total), true
}

type coreDir struct {
	index int
	name  string
}

func listCores(fs afero.Fs, base string) ([]coreDir, error) {
	if base == "" {
		return nil, errors.New().New(ErrNotConfigured)
	}

	infos, err := afero.ReadDir(fs, base)
	if err != nil {
		return nil, errors.New().Wrap(ErrNodeUnreadable, err)
	}

	var cores []coreDir
	for _, info := range infos {
		m := coreDirPattern.FindStringSubmatch(info.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		cores = append(cores, coreDir{index: index, name: info.Name()})
	}

	sort.Slice(cores, func(i, j int) bool { return cores[i].index < cores[j].index })
	return cores, nil
}

// coreClocks renders every core's current frequency as "cpu0: 1800 MHz"
// fragments joined by ";". Offline cores keep their slot without a reading.
func coreClocks(fs afero.Fs, base string) (string, error) {
	cores, err := listCores(fs, base)
	if err != nil {
		return "", err
	}
	if len(cores) == 0 {
		return "", errors.New().WithData(ErrNodeUnreadable, base)
	}

	fragments := make([]string, 0, len(cores))
	for _, core := range cores {
		khz, err := readInt(fs, filepath.Join(base, core.name, "cpufreq", "scaling_cur_freq"))
		if err != nil {
			fragments = append(fragments, core.name+": offline")
			continue
		}
		fragments = append(fragments, fmt.Sprintf("%s: %d MHz", core.name, khz/1000))
	}

	return strings.Join(fragments, ";"), nil
}
