package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qms/qms/internal/config"
	"github.com/qms/qms/internal/logging"
	"github.com/qms/qms/pkg/detector"
	"github.com/qms/qms/pkg/monitor"
)

const defaultHistoryLimit = 10

// Replaced in tests
var (
	loadConfig = config.Load

	newBackend = func(cfg *config.Config, logger *zap.Logger) (monitor.Backend, error) {
		return detector.New(detector.Options{
			Backend: cfg.Backend,
			NoDDCCI: cfg.Toggle.NoDDCCI,
			Logger:  logger,
		})
	}

	runTray = runTrayApp
)

type rootOptions struct {
	configFile string
	list       bool
	output     string
	enable     []string
	disable    []string
	noDDCCI    bool
	history    int
	clear      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName + " [flags] [names...]",
		Short: "Toggle secondary monitors from the system tray",
		Long: `QMS switches secondary monitors on and off with one click from the
system tray. Without flags it starts the tray application; the flags below run a
single command and exit.

Monitor names are the ones printed by --list. Names given after --enable or
--disable are added to the list, so "qms --enable DELL U2415" addresses two
monitors while "qms --enable 'DELL U2415'" addresses one.`,
		Example: `  qms
  qms --list --output json
  qms --disable HDMI-1 DP-2
  qms --no-ddcci
  qms --history=20`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.list, "list", "l", false, "List monitors and exit")
	flags.StringVarP(&opts.output, "output", "o", "text", "Output format for --list and --history: text, json or yaml")
	flags.StringArrayVarP(&opts.enable, "enable", "e", nil, "Enable the named monitors and exit")
	flags.StringArrayVarP(&opts.disable, "disable", "d", nil, "Disable the named monitors and exit")
	flags.BoolVar(&opts.noDDCCI, "no-ddcci", false, "Use only the OS display switch, no per-monitor DDC/CI commands")
	flags.IntVar(&opts.history, "history", 0, "Print the last n toggle events and exit")
	flags.Lookup("history").NoOptDefVal = strconv.Itoa(defaultHistoryLimit)
	flags.BoolVar(&opts.clear, "clear-history", false, "Delete all recorded toggles and errors after confirmation")
	cmd.MarkFlagsMutuallyExclusive("list", "enable", "disable", "history", "clear-history")

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file path")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", appName, version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if opts.noDDCCI {
		cfg.Toggle.NoDDCCI = true
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("enable"):
		return runPower(cmd, cfg, append(opts.enable, args...), true)
	case flags.Changed("disable"):
		return runPower(cmd, cfg, append(opts.disable, args...), false)
	}

	if len(args) > 0 {
		return errors.Errorf("unexpected arguments %q, monitor names follow --enable or --disable", args)
	}

	switch {
	case opts.list:
		return runList(cmd, cfg, opts.output)
	case flags.Changed("history"):
		return runHistory(cmd, cfg, opts.history, opts.output)
	case opts.clear:
		return runClearHistory(cmd, cfg)
	}
	return runTray(cfg)
}

// cliLogger writes warnings and errors to stderr; debug stays available through the config
func cliLogger(cfg *config.Config) *zap.Logger {
	level := "warn"
	if cfg.Log.Level == "debug" || cfg.Log.Level == "error" {
		level = cfg.Log.Level
	}
	logger, err := logging.New(level, "")
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openBackend(cfg *config.Config, logger *zap.Logger) (monitor.Backend, error) {
	backend, err := newBackend(cfg, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize display backend")
	}
	return backend, nil
}
