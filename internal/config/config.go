package config

import (
	"os"
	"path/filepath"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval        = 1
	DefaultLogDir          = "/sdcard/GameBar"
	DefaultPackage         = "unknown"
	DefaultRoot            = "/"
	DefaultLogLevel        = "info"
	DefaultMaxRows         = 10000
	DefaultFlushInterval   = 5
	DefaultGPUClockDivider = 1000000
	DefaultTempDivider     = 1000

	configName       = "gamebar"
	configEnv        = "GAMEBAR_CONFIG"
	defaultEnvPrefix = "GAMEBAR"
)

type Config struct {
	Interval        int    `mapstructure:"interval"`
	LogDir          string `mapstructure:"log_dir"`
	Package         string `mapstructure:"package"`
	Root            string `mapstructure:"root"`
	LogLevel        string `mapstructure:"log_level"`
	MaxRows         int    `mapstructure:"max_rows"`
	FlushInterval   int    `mapstructure:"flush_interval"`
	GPUUsagePath    string `mapstructure:"gpu_usage_path"`
	GPUClockPath    string `mapstructure:"gpu_clock_path"`
	GPUClockDivider int    `mapstructure:"gpu_clock_divider"`
	GPUTempPath     string `mapstructure:"gpu_temp_path"`
	GPUTempDivider  int    `mapstructure:"gpu_temp_divider"`
	RAMFreqPath     string `mapstructure:"ram_freq_path"`
	RAMTempPath     string `mapstructure:"ram_temp_path"`
	RAMTempDivider  int    `mapstructure:"ram_temp_divider"`
	CPUBasePath     string `mapstructure:"cpu_base_path"`
	ProcStatPath    string `mapstructure:"proc_stat_path"`
	ProcMeminfoPath string `mapstructure:"proc_meminfo_path"`
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"interval":       "interval",
	"log-dir":        "log_dir",
	"package":        "package",
	"root":           "root",
	"log-level":      "log_level",
	"max-rows":       "max_rows",
	"flush-interval": "flush_interval",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_dir", DefaultLogDir)
	v.SetDefault("package", DefaultPackage)
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("max_rows", DefaultMaxRows)
	v.SetDefault("flush_interval", DefaultFlushInterval)
	v.SetDefault("gpu_usage_path", "/sys/class/kgsl/kgsl-3d0/gpu_busy_percentage")
	v.SetDefault("gpu_clock_path", "/sys/class/kgsl/kgsl-3d0/gpuclk")
	v.SetDefault("gpu_clock_divider", DefaultGPUClockDivider)
	v.SetDefault("gpu_temp_path", "/sys/class/kgsl/kgsl-3d0/temp")
	v.SetDefault("gpu_temp_divider", DefaultTempDivider)
	v.SetDefault("ram_freq_path", "/sys/devices/system/cpu/bus_dcvs/DDR/cur_freq")
	v.SetDefault("ram_temp_path", "/sys/class/thermal/thermal_zone80/temp")
	v.SetDefault("ram_temp_divider", DefaultTempDivider)
	v.SetDefault("cpu_base_path", "/sys/devices/system/cpu")
	v.SetDefault("proc_stat_path", "/proc/stat")
	v.SetDefault("proc_meminfo_path", "/proc/meminfo")
}

// RegisterFlags adds the configuration flags to fs. Only flags the user sets
// override file and environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("interval", DefaultInterval, "Sampling interval in seconds")
	fs.String("log-dir", DefaultLogDir, "Directory holding session logs")
	fs.String("package", DefaultPackage, "Package name recorded in the session log")
	fs.String("root", DefaultRoot, "Filesystem root used when probing sensors")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning, error")
	fs.Int("max-rows", DefaultMaxRows, "Maximum buffered rows before the oldest half is dropped")
	fs.Int("flush-interval", DefaultFlushInterval, "Seconds between session log flushes")
}

// Load merges defaults, the config file, GAMEBAR_* environment variables and
// flags, in increasing order of precedence. fs may be nil.
func Load(fs *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{
		configPath: os.Getenv(configEnv),
		envPrefix:  defaultEnvPrefix,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.AutomaticEnv()

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath("/data/local/tmp")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || o.configPath != "" {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			flag := fs.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.FlushInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.FlushInterval)
	}
	if c.MaxRows < 2 {
		return errFactory.WithData(errors.ErrInvalidMaxRows, c.MaxRows)
	}

	return nil
}
