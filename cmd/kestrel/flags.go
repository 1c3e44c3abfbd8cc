package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kestrel/internal/project"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func readColor(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, err
	}
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
}

// parseConstants reads NAME=VALUE pairs given with -D.
func parseConstants(defs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(defs))
	for _, d := range defs {
		name, value, ok := strings.Cut(d, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid -D %q (expected NAME=VALUE)", d)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -D %q: %w", d, err)
		}
		out[name] = n
	}
	return out, nil
}

// readOverrides collects the flags the user actually set, so that unset
// flags do not mask manifest or environment values.
func readOverrides(cmd *cobra.Command, args []string) (project.Overrides, error) {
	o := project.Overrides{Trees: args}
	flags := cmd.Flags()
	var err error
	if o.Target, err = flags.GetString("target"); err != nil {
		return o, err
	}
	if o.Jobs, err = flags.GetInt("jobs"); err != nil {
		return o, err
	}
	if flags.Lookup("output") != nil {
		if o.Output, err = flags.GetString("output"); err != nil {
			return o, err
		}
	}
	if o.NoCache, err = flags.GetBool("no-cache"); err != nil {
		return o, err
	}
	if flags.Changed("max-diagnostics") {
		n, err := flags.GetInt("max-diagnostics")
		if err != nil {
			return o, err
		}
		o.MaxDiagnostics = &n
	}
	if o.Trace, err = flags.GetString("trace"); err != nil {
		return o, err
	}
	defs, err := flags.GetStringArray("define")
	if err != nil {
		return o, err
	}
	if o.Constants, err = parseConstants(defs); err != nil {
		return o, err
	}
	return o, nil
}

// addBuildFlags registers the flags shared by build and check.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("target", "", "target triple (default from kestrel.toml or host default)")
	cmd.Flags().IntP("jobs", "j", 0, "parallel jobs (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the SSA cache")
	cmd.Flags().StringArrayP("define", "D", nil, "build constant NAME=VALUE")
	cmd.Flags().String("root", "", "main module path, dot separated")
}
