package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cdetect/internal/report"
	"cdetect/internal/toolchain"
)

var probeCmd = &cobra.Command{
	Use:   "probe [compiler...]",
	Short: "Probe which -std= values a compiler accepts",
	Long: `Compile a minimal source file once per language standard and report
which -std= values the compiler accepted.

Without arguments the compiler chosen by "cdetect find" is probed. Each
argument is treated like CC: an absolute path or a name searched on PATH.
Several compilers are probed concurrently; they share one scratch directory
and take turns on the probe source.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().String("scratch", "", "scratch directory for the probe source (default: a fresh temp dir)")
	probeCmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack)")
	probeCmd.Flags().Int("jobs", runtime.NumCPU(), "maximum number of compilers probed at once")
	probeCmd.Flags().Bool("verbose", false, "show every attempted standard (pretty format)")
}

func runProbe(cmd *cobra.Command, args []string) error {
	scratch, err := cmd.Flags().GetString("scratch")
	if err != nil {
		return fmt.Errorf("failed to read --scratch: %w", err)
	}
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to read --format: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to read --jobs: %w", err)
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to read --verbose: %w", err)
	}
	format, err := report.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	if jobs < 1 {
		jobs = 1
	}

	targets, err := probeTargets(cmd, args)
	if err != nil {
		return err
	}

	if scratch == "" {
		tmp, err := os.MkdirTemp("", "cdetect-")
		if err != nil {
			return fmt.Errorf("failed to create scratch dir: %w", err)
		}
		defer func() {
			if rmErr := os.RemoveAll(tmp); rmErr != nil && !isQuiet(cmd) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to remove %s: %v\n", tmp, rmErr)
			}
		}()
		scratch = tmp
	} else if err := os.MkdirAll(scratch, 0o750); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}

	prober := toolchain.Prober{Retry: toolchain.RetryFromConfig(current.cfg)}
	entries := make([]report.Entry, len(targets))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for i, props := range targets {
		i, props := i, props
		g.Go(func() error {
			phase := current.timer.Begin("probe " + props.Path)
			outcomes, probeErr := prober.Report(ctx, props, scratch)
			current.timer.End(phase, fmt.Sprintf("%d accepted", len(props.Standards)))
			entries[i] = report.NewEntry(props, outcomes, probeErr)
			return probeErr
		})
	}
	probeErr := g.Wait()

	if err := report.Write(cmd.OutOrStdout(), entries, report.Options{Format: format, Verbose: verbose}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return probeErr
}

// probeTargets resolves the compilers to probe, seeded from the configuration.
func probeTargets(cmd *cobra.Command, args []string) ([]*toolchain.Properties, error) {
	phase := current.timer.Begin("discover")
	defer current.timer.End(phase, "")

	if len(args) == 0 {
		props, ok := toolchain.NewResolver(current.cfg).Properties(cmd.Context())
		if !ok {
			return nil, errNoCompiler
		}
		return []*toolchain.Properties{props}, nil
	}

	targets := make([]*toolchain.Properties, 0, len(args))
	for _, arg := range args {
		cfg := current.cfg
		cfg.CC = arg
		cfg.CCSet = true
		props, ok := toolchain.NewResolver(cfg).Properties(cmd.Context())
		if !ok {
			return nil, fmt.Errorf("compiler %q not found", arg)
		}
		targets = append(targets, props)
	}
	return targets, nil
}
