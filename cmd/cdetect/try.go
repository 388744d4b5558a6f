package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cdetect/internal/toolchain"
)

var tryCmd = &cobra.Command{
	Use:   "try --src DIR [flags] stem...",
	Short: "Print the first source variant that compiles",
	Long: `Compile DIR/<stem><tag>.c for each stem in order and print the first stem
that builds. CFLAGS and LDFLAGS are appended to every attempt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTry,
}

func init() {
	tryCmd.Flags().String("tag", "", "suffix appended to every stem")
	tryCmd.Flags().String("src", "", "directory holding the candidate sources")
	tryCmd.Flags().String("bin", "", "directory for compiled output (default: a temp dir removed afterwards)")
	tryCmd.Flags().StringArray("flag", nil, "extra compiler argument placed before the source (repeatable)")
}

func runTry(cmd *cobra.Command, args []string) error {
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return fmt.Errorf("failed to read --tag: %w", err)
	}
	srcDir, err := cmd.Flags().GetString("src")
	if err != nil {
		return fmt.Errorf("failed to read --src: %w", err)
	}
	binDir, err := cmd.Flags().GetString("bin")
	if err != nil {
		return fmt.Errorf("failed to read --bin: %w", err)
	}
	extra, err := cmd.Flags().GetStringArray("flag")
	if err != nil {
		return fmt.Errorf("failed to read --flag: %w", err)
	}
	if srcDir == "" {
		return errors.New("--src is required")
	}

	if binDir == "" {
		tmp, err := os.MkdirTemp("", "cdetect-bin-")
		if err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(tmp) }()
		binDir = tmp
	} else if err := os.MkdirAll(binDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	var customize toolchain.Customizer
	if len(extra) > 0 {
		customize = func(inv toolchain.Invocation) toolchain.Invocation {
			return inv.With(extra...)
		}
	}

	phase := current.timer.Begin("select")
	stem, ok, err := toolchain.NewResolver(current.cfg).SelectVariant(cmd.Context(), tag, args, srcDir, binDir, customize)
	current.timer.End(phase, stem)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no variant compiled")
	}
	fmt.Fprintln(cmd.OutOrStdout(), stem)
	return nil
}
