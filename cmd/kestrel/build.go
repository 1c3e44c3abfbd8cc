package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kestrel/internal/diag"
	"kestrel/internal/diagfmt"
	"kestrel/internal/driver"
	"kestrel/internal/hir"
	"kestrel/internal/project"
	"kestrel/internal/source"
)

var buildCmd = &cobra.Command{
	Use:   "build [trees...]",
	Short: "Check syntax trees and write one SSA file per module",
	Long: `Build loads the given syntax trees (or the ones listed in kestrel.toml),
validates the whole program and writes <module>.ll files to the output
directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [trees...]",
	Short: "Validate syntax trees without lowering",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args, true)
	},
}

func init() {
	addBuildFlags(buildCmd)
	buildCmd.Flags().StringP("output", "o", "", "output directory (default build/)")

	addBuildFlags(checkCmd)
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	checkCmd.Flags().Bool("dump-hir", false, "print the validated program to stdout")
}

// invocation is everything runBuild resolved before starting the driver.
type invocation struct {
	settings project.Settings
	manifest *project.Manifest
	root     []string
	useColor bool
	useTUI   bool
	format   string
	timings  bool
}

func prepare(cmd *cobra.Command, args []string, checkOnly bool) (*invocation, error) {
	inv := &invocation{format: "pretty"}
	var err error
	if inv.useColor, err = readColor(cmd, os.Stderr); err != nil {
		return nil, err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}
	if inv.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return nil, err
	}
	if checkOnly {
		if inv.format, err = cmd.Flags().GetString("format"); err != nil {
			return nil, err
		}
		switch inv.format {
		case "pretty", "json":
		default:
			return nil, fmt.Errorf("unsupported format %q (must be pretty or json)", inv.format)
		}
	}
	// the progress display would interleave with json on stdout
	inv.useTUI = inv.format == "pretty" && shouldUseTUI(mode)

	rootFlag, err := cmd.Flags().GetString("root")
	if err != nil {
		return nil, err
	}
	if rootFlag != "" {
		inv.root = strings.Split(rootFlag, ".")
	}

	over, err := readOverrides(cmd, args)
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, _, err := project.Discover(wd)
	if err != nil {
		return nil, err
	}
	inv.manifest = m
	if inv.settings, err = project.Resolve(m, over, project.Process); err != nil {
		return nil, err
	}
	return inv, nil
}

func runBuild(cmd *cobra.Command, args []string, checkOnly bool) error {
	inv, err := prepare(cmd, args, checkOnly)
	if err != nil {
		var perr *project.Error
		if errors.As(err, &perr) {
			reportProjectError(perr, cmd)
			return errBuildFailed
		}
		return err
	}
	s := inv.settings

	closeTrace, err := setupTracing(cmd, s.Trace)
	if err != nil {
		return err
	}
	defer closeTrace()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := driver.Options{
		Trees:          s.Trees,
		Arch:           s.Arch,
		Root:           inv.root,
		Jobs:           s.Jobs,
		MaxDiagnostics: s.MaxDiagnostics,
		CheckOnly:      checkOnly,
	}
	if s.Cache && !checkOnly {
		c, cerr := driver.OpenDiskCache("kestrel", s.CacheDir)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", cerr)
		} else {
			opts.Cache = c
		}
	}

	var res *driver.Result
	if inv.useTUI {
		title := "Building " + s.Name
		if checkOnly {
			title = "Checking " + s.Name
		}
		res, err = runBuildWithUI(ctx, title, opts)
	} else {
		res, err = driver.Build(ctx, opts)
	}

	if res != nil {
		if printErr := printDiagnostics(res, inv); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		var ice *driver.InternalError
		if errors.As(err, &ice) {
			fmt.Fprintln(os.Stderr, ice.Error())
			if len(ice.Stack) > 0 {
				os.Stderr.Write(ice.Stack)
			}
			dumpTrace(ctx)
		}
		return err
	}
	if inv.timings {
		fmt.Fprint(os.Stderr, res.Timings.Summary())
	}
	if !res.OK() {
		return errBuildFailed
	}
	if checkOnly {
		dump, _ := cmd.Flags().GetBool("dump-hir")
		if dump && res.Program != nil {
			return hir.Dump(cmd.OutOrStdout(), res.Program)
		}
		return nil
	}

	written, err := res.WriteOutputs(s.Output)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), displayOutput(path))
	}
	if res.Cached && inv.timings {
		fmt.Fprintln(os.Stderr, "outputs taken from cache")
	}
	return nil
}

func printDiagnostics(res *driver.Result, inv *invocation) error {
	if inv.format == "json" {
		return diagfmt.JSON(os.Stdout, res.Bag, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			BaseDir:          baseDir(inv.manifest),
			Max:              inv.settings.MaxDiagnostics,
			IncludeNotes:     true,
		})
	}
	if res.Bag.Len() == 0 {
		return nil
	}
	diagfmt.Pretty(os.Stderr, res.Bag, res.Files, diagfmt.PrettyOpts{
		Color:     inv.useColor,
		Context:   1,
		PathMode:  diagfmt.PathModeRelative,
		BaseDir:   baseDir(inv.manifest),
		ShowNotes: true,
		Max:       inv.settings.MaxDiagnostics,
	})
	return nil
}

// reportProjectError prints a manifest or settings problem as a diagnostic.
func reportProjectError(perr *project.Error, cmd *cobra.Command) {
	bag := diag.NewBag(1)
	diag.ReportError(diag.BagReporter{Bag: bag}, perr.Code, source.Span{}, perr.Error()).Emit()
	useColor, _ := readColor(cmd, os.Stderr)
	diagfmt.Pretty(os.Stderr, bag, nil, diagfmt.PrettyOpts{Color: useColor})
}

func baseDir(m *project.Manifest) string {
	if m != nil {
		return m.Root
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func displayOutput(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
