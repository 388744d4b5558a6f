package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cdetect/internal/toolchain"
)

var errNoCompiler = errors.New("no C compiler found (set CC or install cc, clang or gcc)")

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Print the C compiler a build would use",
	Long: `Print the absolute path of the C compiler chosen from CC, HOST and TARGET.

With --candidates the names searched on PATH are listed instead. With
--invocation the prepared command line, including any --target argument,
is printed.`,
	Args: cobra.NoArgs,
	RunE: runFind,
}

func init() {
	findCmd.Flags().Bool("candidates", false, "list candidate executable names in search order")
	findCmd.Flags().Bool("invocation", false, "print the prepared invocation instead of the path")
}

func runFind(cmd *cobra.Command, _ []string) error {
	showCandidates, err := cmd.Flags().GetBool("candidates")
	if err != nil {
		return fmt.Errorf("failed to read --candidates: %w", err)
	}
	showInvocation, err := cmd.Flags().GetBool("invocation")
	if err != nil {
		return fmt.Errorf("failed to read --invocation: %w", err)
	}

	resolver := toolchain.NewResolver(current.cfg)
	out := cmd.OutOrStdout()

	if showCandidates {
		if current.cfg.HasCC() && !isQuiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: CC=%s overrides the candidate search\n", current.cfg.CC)
		}
		for _, name := range resolver.Candidates() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	phase := current.timer.Begin("discover")
	inv, ok := resolver.Prepare(cmd.Context())
	current.timer.End(phase, "")
	if !ok {
		return errNoCompiler
	}
	if showInvocation {
		fmt.Fprintln(out, inv.String())
		return nil
	}
	fmt.Fprintln(out, inv.Path)
	return nil
}
