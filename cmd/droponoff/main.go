// Package main is the CLI entry point for droponoff.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/scode/droponoff/internal/config"
	"github.com/scode/droponoff/internal/domain"
	"github.com/scode/droponoff/internal/infra"
	"github.com/scode/droponoff/internal/profile"
	"github.com/scode/droponoff/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

// Set by the root command before any subcommand runs
var logger *zap.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = newLogger(debug)
		}
		logger.Error(err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "droponoff",
	Short:         "A reversible kill switch for Dropbox on macOS",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(debug)
	},
}

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Restore Dropbox to normal operation",
	RunE:  runOn,
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable Dropbox completely (DOES NOT WAIT FOR SYNCHRONIZATION TO FINISH)",
	Long: `Quits Dropbox, parks its update agent, disables its Finder and file-provider
extensions, and terminates the file-provider host processes.

Pending uploads are NOT waited for. Use 'droponoff on' to undo.`,
	RunE: runOff,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current Dropbox state (read-only)",
	RunE:  runStatus,
}

var nukeScratchCmd = &cobra.Command{
	Use:   "nuke-scratch",
	Short: "DANGEROUS: Delete scratch_files contents after ensuring Dropbox is stopped (READ FULL HELP)",
	Long: `DANGEROUS: Delete scratch_files contents after ensuring Dropbox is stopped (READ FULL HELP).

This will nuke scratch files. It should only be used:

- With Dropbox entirely turned off.
- With no pending synchronization operations (especially uploads) at the time
  Dropbox was turned off.

If this is run while uploads are occurring it is highly likely to lead to data
loss. Even if used as recommended, this command is risky and is not in any way
supported by Dropbox or the author of this tool.`,
	RunE: runNukeScratch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	debug      bool
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(nukeScratchCmd)
	rootCmd.AddCommand(versionCmd)
}

// components is everything a command needs, wired for the invoking user.
type components struct {
	app          profile.AppProfile
	paths        *infra.Paths
	status       *usecase.StatusAggregator
	orchestrator *usecase.Orchestrator
}

func wire() (*components, error) {
	paths, err := infra.DiscoverPaths()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.DefaultEnvFile(paths.Home))
	if err != nil {
		return nil, err
	}

	registry := profile.NewRegistry(paths.Home)
	app, err := registry.Get(profile.DefaultID)
	if err != nil {
		return nil, err
	}

	logger.Debug("resolved environment",
		zap.Strings("profiles", registry.List()),
		zap.String("user", paths.User),
		zap.Int("uid", paths.UID),
		zap.String("home", paths.Home),
		zap.Duration("process_timeout", cfg.ProcessTimeout),
		zap.Int("verify_attempts", cfg.VerifyAttempts))

	procs := infra.NewProcessMonitor(app, paths.UID, cfg.PollInterval, logger)
	service := infra.NewLaunchAgentController(paths.LaunchAgentsDir(), app.LaunchAgentName(), paths.UID, logger)
	exts := infra.NewPluginKitController(app.ExtensionIDs(), logger)
	finder := infra.NewFinderRestarter(logger)
	locator := infra.NewAppLocator(app.AppCandidates())

	status := usecase.NewStatusAggregator(locator, procs, service, exts)

	return &components{
		app:          app,
		paths:        paths,
		status:       status,
		orchestrator: usecase.NewOrchestrator(app, procs, service, exts, finder, status, cfg, logger),
	}, nil
}

func runOn(cmd *cobra.Command, args []string) error {
	c, err := wire()
	if err != nil {
		return err
	}
	return c.orchestrator.On(context.Background())
}

func runOff(cmd *cobra.Command, args []string) error {
	c, err := wire()
	if err != nil {
		return err
	}
	return c.orchestrator.Off(context.Background())
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := wire()
	if err != nil {
		return err
	}

	snap, err := c.status.Snapshot()
	if err != nil {
		return err
	}
	usecase.WriteStatusReport(cmd.OutOrStdout(), c.app, snap)
	return nil
}

func runNukeScratch(cmd *cobra.Command, args []string) error {
	c, err := wire()
	if err != nil {
		return err
	}

	root := c.paths.ScratchRoot(&infra.RealFileChecker{}, c.app.GroupContainer())
	cleaner := usecase.NewScratchCleaner(c.status, root, logger)
	cleaner.OnProgress(func(p domain.ScratchProgress) {
		logger.Info(fmt.Sprintf("  deleting %s (%s, %s freed so far)",
			p.NextPath, humanize.Bytes(uint64(p.NextSize)), humanize.Bytes(uint64(p.DeletedBytes))))
	})

	logger.Info("→ checking " + c.app.Name() + " status")
	result, err := cleaner.Run()
	if err != nil {
		var perr *domain.PreconditionError
		if errors.As(err, &perr) {
			logger.Warn("run `droponoff status` to check and `droponoff off` to turn it off")
		}
		if result != nil && result.FilesDeleted > 0 {
			logger.Warn(fmt.Sprintf("%d file(s) (%s) were already deleted",
				result.FilesDeleted, humanize.Bytes(uint64(result.BytesFreed))))
		}
		return err
	}

	if !result.FoundAny() {
		logger.Info("no scratch_files directories found under " + result.Root)
		return nil
	}

	logger.Info(fmt.Sprintf("✓ deleted %d file(s), %s freed", result.FilesDeleted, humanize.Bytes(uint64(result.BytesFreed))))
	if n := len(result.Skipped); n > 0 {
		logger.Warn(fmt.Sprintf("%d unexpected subdirectory(ies) left in place", n), zap.Strings("paths", result.Skipped))
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("droponoff %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

// newLogger builds a human-oriented console logger on stderr.
func newLogger(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.NameKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(os.Stderr.Fd())) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
