package sensor

import (
	"path"
	"strings"

	"codeberg.org/mutker/gamebar/internal/logger"
	"github.com/spf13/afero"
)

// Plausible CPU temperature window for keyword matches, in milli-celsius.
const (
	minPlausibleMilliC = 20000
	maxPlausibleMilliC = 90000
)

// zone is one thermal zone directory with sibling type and temp files.
type zone struct {
	dir      string
	label    string
	tempPath string
}

// zoneRule reports whether a zone is the CPU zone.
type zoneRule func(r *Resolver, z zone) bool

type zonePass struct {
	name  string
	rules []zoneRule
}

// Passes run in order; within a pass rules run in order and each rule walks
// every zone, so a higher-ranked rule wins regardless of listing order.
var cpuZonePasses = []zonePass{
	{
		name: "priority",
		rules: []zoneRule{
			labelEquals("cpu-thermal", "mtktscpu"),
			labelHasPrefix("cpuss-"),
			labelEquals("cpu"),
			labelHasPrefix("cpu-cluster", "cluster"),
		},
	},
	{
		name: "keyword",
		rules: []zoneRule{
			all(labelContains("cpu", "tsens", "soc"), tempWithin(minPlausibleMilliC, maxPlausibleMilliC)),
		},
	},
}

func labelEquals(labels ...string) zoneRule {
	return func(_ *Resolver, z zone) bool {
		for _, l := range labels {
			if z.label == l {
				return true
			}
		}
		return false
	}
}

func labelHasPrefix(prefixes ...string) zoneRule {
	return func(_ *Resolver, z zone) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(z.label, p) {
				return true
			}
		}
		return false
	}
}

func labelContains(keywords ...string) zoneRule {
	return func(_ *Resolver, z zone) bool {
		for _, k := range keywords {
			if strings.Contains(z.label, k) {
				return true
			}
		}
		return false
	}
}

func tempWithin(low, high int) zoneRule {
	return func(r *Resolver, z zone) bool {
		value, err := r.readInt(z.tempPath)
		return err == nil && value >= low && value <= high
	}
}

func all(rules ...zoneRule) zoneRule {
	return func(r *Resolver, z zone) bool {
		for _, rule := range rules {
			if !rule(r, z) {
				return false
			}
		}
		return true
	}
}

// listZones returns every subdirectory of the thermal roots holding a
// readable type file and a readable temp file, in root then listing order.
func (r *Resolver) listZones() []zone {
	var zones []zone

	for _, root := range r.thermalRoots {
		entries, err := afero.ReadDir(r.fs, root)
		if err != nil {
			logger.Debug().Str("root", root).Err(err).Msg("Thermal root not available")
			continue
		}

		// Zone entries are usually symlinks, so they are not filtered on
		// IsDir; a missing type file rules them out instead.
		for _, entry := range entries {
			dir := path.Join(root, entry.Name())
			label, err := r.readString(path.Join(dir, "type"))
			if err != nil {
				continue
			}

			tempPath := path.Join(dir, "temp")
			if err := r.probe(tempPath); err != nil {
				continue
			}

			zones = append(zones, zone{
				dir:      dir,
				label:    strings.ToLower(label),
				tempPath: tempPath,
			})
		}
	}

	return zones
}

func (r *Resolver) scanThermalZones() (string, bool) {
	zones := r.listZones()

	for _, pass := range cpuZonePasses {
		for _, rule := range pass.rules {
			for _, z := range zones {
				if rule(r, z) {
					logger.Debug().
						Str("pass", pass.name).
						Str("zone", z.dir).
						Str("type", z.label).
						Msg("CPU thermal zone matched")
					return z.tempPath, true
				}
			}
		}
	}

	return "", false
}
