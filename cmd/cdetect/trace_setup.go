package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cdetect/internal/trace"
)

// setupTracing reads the trace flags, attaches a tracer to the command
// context and returns the matching cleanup. The cleanup dumps the in-memory
// ring to stderr when the command failed.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	traceOutput, err := cmd.Flags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := cmd.Flags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := cmd.Flags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	heartbeatInterval, err := cmd.Flags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	// an explicit destination without a level means "show stages"
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Format:     format,
		OutputPath: traceOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	root := trace.Begin(tracer, trace.ScopeDriver, cmd.CommandPath(), 0)
	ctx = trace.WithSpan(ctx, root)
	cmd.SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, heartbeatInterval)

	return func(failed bool) {
		heartbeat.Stop()
		if failed {
			root.End("failed")
		} else {
			root.End("")
		}
		if ring, ok := trace.Ring(tracer); ok && failed && level == trace.LevelError {
			fmt.Fprintln(cmd.ErrOrStderr(), "trace: last events before failure:")
			if err := ring.Dump(cmd.ErrOrStderr(), format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
