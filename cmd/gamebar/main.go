package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/gamebar/internal/config"
	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"codeberg.org/mutker/gamebar/internal/probe"
	"codeberg.org/mutker/gamebar/internal/report"
	"codeberg.org/mutker/gamebar/internal/sensor"
	"codeberg.org/mutker/gamebar/internal/session"
	"codeberg.org/mutker/gamebar/internal/sessionlog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg        *config.Config
	configPath string
	format     string

	// hostFs holds session logs; sysFs is hostFs below the configured root
	// and is used for probing.
	hostFs afero.Fs
	sysFs  afero.Fs
}

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gamebar: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(hostFs afero.Fs) *cobra.Command {
	a := &app{hostFs: hostFs}

	cmd := &cobra.Command{
		Use:           "gamebar",
		Short:         "Record and analyze in-game performance on Android devices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	config.RegisterFlags(flags)
	flags.StringVar(&a.configPath, "config", "", "Path to gamebar.toml")
	flags.StringVar(&a.format, "format", report.FormatTable, "Output format: table, plain, json")

	cmd.AddCommand(
		newDetectCmd(a),
		newRecordCmd(a),
		newAnalyzeCmd(a),
		newHistoryCmd(a),
	)

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	var opts []config.Option
	if a.configPath != "" {
		opts = append(opts, config.WithConfigFile(a.configPath))
	}

	cfg, err := config.Load(cmd.Flags(), opts...)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.InitWithWriter(cmd.ErrOrStderr(), level, logger.IsService())
	logger.Debug().
		Str("root", cfg.Root).
		Str("log_dir", cfg.LogDir).
		Int("interval", cfg.Interval).
		Msg("Config loaded")

	a.sysFs = a.hostFs
	if cfg.Root != "" && cfg.Root != "/" {
		a.sysFs = afero.NewBasePathFs(a.hostFs, cfg.Root)
	}

	return nil
}

func (a *app) renderOptions(w io.Writer) report.Options {
	return report.Options{Format: a.format, Color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newDetectCmd(a *app) *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show the sensor nodes found on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolver := sensor.NewResolver(a.sysFs)

			var sensors []sensor.ResolvedSensor
			if kindName == "" {
				sensors = resolver.Detect()
			} else {
				kind, err := sensor.ParseKind(kindName)
				if err != nil {
					return errors.New().Wrap(errors.ErrInvalidArgument, err)
				}
				sensors = []sensor.ResolvedSensor{resolver.Sensor(kind)}
			}

			out := cmd.OutOrStdout()
			return report.WriteSensors(out, sensors, a.renderOptions(out))
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "", "Only detect one kind: battery_temp, cpu_temp, fps")

	return cmd
}

func newRecordCmd(a *app) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Sample device metrics into a session log until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go handleSignals(ctx, cancel)

			if duration > 0 {
				var stop context.CancelFunc
				ctx, stop = context.WithTimeout(ctx, duration)
				defer stop()
			}

			path, err := a.record(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 records until interrupted)")

	return cmd
}

// record samples every interval until ctx is done and returns the log path.
func (a *app) record(ctx context.Context) (string, error) {
	sampler := probe.NewSampler(
		a.sysFs,
		sensor.NewResolver(a.sysFs),
		probe.PathsFromConfig(a.cfg),
		logger.Default().With("probe"),
	)

	w, err := sessionlog.NewWriter(a.hostFs, sessionlog.Config{
		Dir:           a.cfg.LogDir,
		Package:       a.cfg.Package,
		MaxRows:       a.cfg.MaxRows,
		FlushInterval: time.Duration(a.cfg.FlushInterval) * time.Second,
	}, logger.Default().With("sessionlog"), time.Now())
	if err != nil {
		return "", err
	}

	loopErr := loop(ctx, time.Duration(a.cfg.Interval)*time.Second, func(now time.Time) error {
		return w.Append(sampler.Sample(a.cfg.Package, now))
	})

	if err := w.Close(); err != nil {
		logger.ErrorWithCode(toCoded(err)).Msg("Failed to close session log")
		if loopErr == nil {
			loopErr = err
		}
	}
	if loopErr != nil {
		return "", errors.New().Wrap(errors.ErrRecordLoop, loopErr)
	}

	return w.Path(), nil
}

// loop calls sample once immediately and then on every tick.
func loop(ctx context.Context, interval time.Duration, sample func(time.Time) error) error {
	if interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, interval.String())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("Recording started")

	if err := sample(time.Now()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Recording stopped")
			return nil
		case now := <-ticker.C:
			if err := sample(now); err != nil {
				return err
			}
		}
	}
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze FILE",
		Short: "Summarize a recorded session log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := session.NewAnalyzer(a.hostFs).Analyze(args[0])
			if r == nil {
				return errors.New().WithData(errors.ErrNoReport, args[0])
			}

			out := cmd.OutOrStdout()
			return report.WriteReport(out, r, a.renderOptions(out))
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded session logs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := sessionlog.List(a.hostFs, a.cfg.LogDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return report.WriteHistory(out, entries, a.renderOptions(out))
		},
	}
}

func toCoded(err error) errors.Error {
	var coded errors.Error
	if errors.As(err, &coded) {
		return coded
	}
	return errors.New().Wrap(errors.ErrInternal, err)
}
