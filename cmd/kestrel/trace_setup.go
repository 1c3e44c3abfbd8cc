package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kestrel/internal/trace"
)

// setupTracing builds the tracer from the trace flags and attaches it to
// the command context. level is the resolved level from flags, environment
// or manifest. The returned function flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, level string) (func(), error) {
	flags := cmd.Flags()
	output, err := flags.GetString("trace-output")
	if err != nil {
		return nil, err
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, err
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, err
	}

	lvl, err := trace.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if lvl == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      lvl,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}, nil
}

// dumpTrace writes the in-memory trace ring after a crash, if there is one.
func dumpTrace(ctx context.Context) {
	d, ok := trace.FromContext(ctx).(trace.Dumper)
	if !ok {
		return
	}
	fmt.Fprintln(os.Stderr, "--- recent trace events ---")
	if err := d.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
