// Package main implements the cdetect CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cdetect/internal/config"
	"cdetect/internal/observ"
	"cdetect/internal/version"
)

var rootCmd = &cobra.Command{
	Use:               "cdetect",
	Short:             "Find a C compiler and probe what it accepts",
	Long:              `cdetect locates the C compiler a build would use and checks which -std= values it accepts, judging only by exit status.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// session holds per-invocation state shared by subcommands.
type session struct {
	cfg     config.Config
	timer   *observ.Timer
	cleanup func(failed bool)
}

var current = &session{cleanup: func(bool) {}}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(tryCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("config", "", "path to cdetect.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "text", "trace format (text|ndjson)")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	current.cleanup(err != nil)
	if err != nil {
		os.Exit(1)
	}
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := applyColorMode(colorMode); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	current.cfg = cfg
	current.timer = observ.NewTimer()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	current.cleanup = func(failed bool) {
		cleanup(failed)
		printTimings(cmd)
	}
	return nil
}

// loadConfig resolves cdetect.toml and the environment. version does not
// touch the toolchain, so a broken config file must not stop it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if cmd == versionCmd {
		return config.Default(), nil
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	return config.Load(configPath, os.LookupEnv)
}

func applyColorMode(mode string) error {
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func printTimings(cmd *cobra.Command) {
	show, err := cmd.Flags().GetBool("timings")
	if err != nil || !show || current.timer == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), current.timer.Summary())
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, err := cmd.Flags().GetBool("quiet")
	return err == nil && quiet
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
