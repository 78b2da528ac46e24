package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/retree/internal/config"
	"github.com/vango-dev/retree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Flags shared by every command.
var (
	configPath string
	debug      bool
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "retree",
		Short: "Drive and inspect a declarative UI-tree reconciler",
		Long: `retree runs a synthetic list screen through the reconciliation engine.

The screen is re-declared every frame; retree reports which parents
changed structure, which nodes changed parameters and which nodes
were pruned.

  init     write a default retree.json
  bench    run frames as fast as possible and print timings
  inspect  run frames on a timer and serve a live inspector`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to retree.json (default: search from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log every frame")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		initCmd(),
		benchCmd(),
		inspectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or retree.json found from the working
// directory, or defaults when neither exists.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Engine.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a text logger on stderr.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Engine.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
