package sensor

import (
	"strconv"
	"strings"
	"sync"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"github.com/spf13/afero"
)

// DefaultDivider is used when a node is missing or its scale cannot be
// classified.
const DefaultDivider = 1000

// dividerBands maps a raw reading range [low, high) to the divider that
// brings it into whole units, assuming the physical value is roughly 20-100.
var dividerBands = []struct {
	low, high int
	divider   int
}{
	{20000, 50000, 1000},
	{2000, 5000, 100},
	{200, 500, 10},
	{20, 100, 1},
}

type cachedPath struct {
	path  string
	found bool
}

// Resolver discovers and caches the sysfs node and unit divider for each
// Kind. Detection only probes for existence and readability; absence is a
// normal outcome and never an error. A Resolver is safe for concurrent use.
type Resolver struct {
	fs           afero.Fs
	candidates   map[Kind][]string
	thermalRoots []string

	mu       sync.RWMutex
	paths    map[Kind]cachedPath
	dividers map[Kind]int
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithCandidates replaces the candidate list for kind.
func WithCandidates(kind Kind, paths ...string) Option {
	return func(r *Resolver) {
		r.candidates[kind] = append([]string(nil), paths...)
	}
}

// WithThermalRoots replaces the directories scanned for CPU thermal zones.
func WithThermalRoots(roots ...string) Option {
	return func(r *Resolver) {
		r.thermalRoots = append([]string(nil), roots...)
	}
}

// NewResolver returns a Resolver probing fs. Use afero.NewOsFs for the live
// device or afero.NewBasePathFs to probe a mirrored tree.
func NewResolver(fs afero.Fs, opts ...Option) *Resolver {
	r := &Resolver{
		fs: fs,
		candidates: map[Kind][]string{
			KindBatteryTemp: DefaultCandidates(KindBatteryTemp),
			KindFPS:         DefaultCandidates(KindFPS),
		},
		thermalRoots: DefaultThermalRoots(),
		paths:        make(map[Kind]cachedPath),
		dividers:     make(map[Kind]int),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ResolvePath returns the first readable candidate for kind. The result,
// including "not found", is cached until Reset.
func (r *Resolver) ResolvePath(kind Kind) (string, bool) {
	if kind == KindCPUTemp {
		return r.ResolveCPUTempPath()
	}

	if cached, ok := r.lookupPath(kind); ok {
		return cached.path, cached.found
	}

	for _, path := range r.candidates[kind] {
		if err := r.probe(path); err != nil {
			logger.Debug().Str("kind", kind.String()).Str("path", path).Err(err).Msg("Candidate rejected")
			continue
		}

		logger.Debug().Str("kind", kind.String()).Str("path", path).Msg("Sensor node detected")
		r.storePath(kind, cachedPath{path: path, found: true})
		return path, true
	}

	logger.Debug().Str("kind", kind.String()).Msg("No sensor node found")
	r.storePath(kind, cachedPath{})
	return "", false
}

// ResolveCPUTempPath scans the thermal roots for the CPU zone's temp node.
// Cached like ResolvePath.
func (r *Resolver) ResolveCPUTempPath() (string, bool) {
	if cached, ok := r.lookupPath(KindCPUTemp); ok {
		return cached.path, cached.found
	}

	path, found := r.scanThermalZones()
	if found {
		logger.Debug().Str("kind", KindCPUTemp.String()).Str("path", path).Msg("Sensor node detected")
	} else {
		logger.Debug().Str("kind", KindCPUTemp.String()).Msg("No sensor node found")
	}

	r.storePath(KindCPUTemp, cachedPath{path: path, found: found})
	return path, found
}

// IsSupported reports whether kind resolves to a node.
func (r *Resolver) IsSupported(kind Kind) bool {
	_, found := r.ResolvePath(kind)
	return found
}

// ResolveDivider reads path once and classifies the raw integer into a unit
// divider. Anything it cannot classify yields DefaultDivider.
func (r *Resolver) ResolveDivider(path string) int {
	raw, err := r.readInt(path)
	if err != nil {
		logger.Debug().Str("path", path).Err(err).Msg("Using default divider")
		return DefaultDivider
	}

	for _, band := range dividerBands {
		if raw >= band.low && raw < band.high {
			logger.Debug().Str("path", path).Int("raw", raw).Int("divider", band.divider).Msg("Detected divider")
			return band.divider
		}
	}

	logger.Debug().Str("path", path).Int("raw", raw).Msg("Raw value outside known bands, using default divider")
	return DefaultDivider
}

// Sensor resolves kind and its divider. The divider is classified once per
// kind and kept until Reset, even if later readings would classify
// differently.
func (r *Resolver) Sensor(kind Kind) ResolvedSensor {
	path, found := r.ResolvePath(kind)
	if !found {
		return ResolvedSensor{Kind: kind, Divider: DefaultDivider}
	}

	r.mu.RLock()
	divider, ok := r.dividers[kind]
	r.mu.RUnlock()

	if !ok {
		divider = r.ResolveDivider(path)
		r.mu.Lock()
		r.dividers[kind] = divider
		r.mu.Unlock()
	}

	return ResolvedSensor{Kind: kind, Path: path, Divider: divider}
}

// Detect resolves every known kind.
func (r *Resolver) Detect() []ResolvedSensor {
	sensors := make([]ResolvedSensor, 0, len(Kinds))
	for _, kind := range Kinds {
		sensors = append(sensors, r.Sensor(kind))
	}

	return sensors
}

// Value reads kind's node and scales it by the cached divider.
func (r *Resolver) Value(kind Kind) (float64, error) {
	s := r.Sensor(kind)
	if !s.Supported() {
		return 0, errors.New().WithData(ErrUnsupported, kind.String())
	}

	content, err := r.readString(s.Path)
	if err != nil {
		return 0, err
	}

	raw, err := strconv.ParseFloat(content, 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrNodeMalformed, err)
	}

	return raw / float64(s.Divider), nil
}

// ReadRaw returns the trimmed content of kind's node.
func (r *Resolver) ReadRaw(kind Kind) (string, error) {
	path, found := r.ResolvePath(kind)
	if !found {
		return "", errors.New().WithData(ErrUnsupported, kind.String())
	}

	return r.readString(path)
}

// Reset drops every cached path and divider.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths = make(map[Kind]cachedPath)
	r.dividers = make(map[Kind]int)
	logger.Debug().Msg("Sensor detection cache cleared")
}

func (r *Resolver) lookupPath(kind Kind) (cachedPath, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cached, ok := r.paths[kind]
	return cached, ok
}

func (r *Resolver) storePath(kind Kind, cached cachedPath) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths[kind] = cached
}

// probe returns nil when path is an existing regular file that can be opened.
func (r *Resolver) probe(path string) error {
	errFactory := errors.New()

	info, err := r.fs.Stat(path)
	if err != nil {
		return errFactory.Wrap(ErrNodeMissing, err)
	}
	if info.IsDir() {
		return errFactory.WithData(ErrNodeUnreadable, "is a directory")
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return errFactory.Wrap(ErrNodeUnreadable, err)
	}

	return f.Close()
}

func (r *Resolver) readString(path string) (string, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", errors.New().Wrap(ErrNodeUnreadable, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", errors.New().New(ErrNodeEmpty)
	}

	return content, nil
}

func (r *Resolver) readInt(path string) (int, error) {
	content, err := r.readString(path)
	if err != nil {
		return 0, err
	}

	value, err := strconv.Atoi(content)
	if err != nil {
		return 0, errors.New().Wrap(ErrNodeMalformed, err)
	}

	return value, nil
}
