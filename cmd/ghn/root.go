package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/guerinoni/ghn/internal/logging"
	"github.com/guerinoni/ghn/internal/model"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *model.AppConfig
	globalOpts struct {
		debug      bool
		configPath string
	}
	logger    = zerolog.Nop()
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ghn",
	Short: "GitHub notifications in your terminal",
	Long: `ghn polls your GitHub notifications and lets you open them in the
browser, mark them as read, or mark them as done.

The access token is read from GH_TOKEN/GITHUB_TOKEN, the system keyring
(see 'ghn auth login'), or the gh CLI hosts file, in that order.

Running ghn without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.configPath
		if path == "" {
			path = model.DefaultConfigPath()
		}

		var err error
		cfg, err = model.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return setupLogger(!cmd.HasParent())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalOpts.debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/ghn/config.yaml)")
}

// setupLogger configures the global logger. The TUI logs to a file so the
// terminal stays clean; subcommands log warnings to stderr.
func setupLogger(tui bool) error {
	opts := logging.Options{
		Debug: globalOpts.debug,
		File:  cfg.Log.File,
		Level: cfg.Log.Level,
	}
	if !tui {
		opts.Console = true
		opts.File = ""
		if !globalOpts.debug {
			opts.Level = "warn"
		}
	}

	l, closer, err := logging.Setup(opts)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = l
	logCloser = closer
	return nil
}
