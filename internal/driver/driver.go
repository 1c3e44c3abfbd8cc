// Package driver runs one compilation: load syntax trees, validate, lower
// every module to SSA text.
//
// Validation sees the whole program at once and is single-threaded. Tree
// loading and module lowering fan out over an errgroup bounded by
// Options.Jobs. A panic inside the core is an invariant failure; it is
// recovered per phase and returned as *InternalError.
package driver

import (
	"context"
	"errors"
	"runtime"
	"slices"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/hir"
	"kestrel/internal/observ"
	"kestrel/internal/platform"
	"kestrel/internal/sema"
	"kestrel/internal/source"
	"kestrel/internal/trace"
)

// ErrNoInputs is returned when Options names no tree at all.
var ErrNoInputs = errors.New("no syntax trees to compile")

// Options configures Build.
type Options struct {
	// Trees are msgpack syntax tree files, merged in this order.
	Trees []string
	// Tree is an in-memory tree used instead of Trees.
	Tree *ast.Tree

	Arch platform.Arch
	// Root is the main module path; defaults to the first top-level module.
	Root []string

	// Jobs bounds parallel work; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int

	// Cache stores emitted modules between runs; nil disables it.
	Cache *DiskCache
	// Progress receives pipeline events; nil discards them.
	Progress ProgressSink
	// CheckOnly stops after validation.
	CheckOnly bool
}

// Output is the SSA text of one module.
type Output struct {
	Name string
	Text string
}

// Result is what one Build produced.
type Result struct {
	Files   *source.FileSet
	Bag     *diag.Bag
	Modules []Output
	// Program is the validated program; nil on a cache hit or failure.
	Program *hir.Program
	// Cached is set when Modules came from the disk cache.
	Cached  bool
	Timings observ.Report
}

// OK reports whether the build produced no errors.
func (r *Result) OK() bool {
	return r != nil && !r.Bag.HasErrors()
}

// Build runs the pipeline. User errors are reported through Result.Bag;
// the returned error is for cancellation, unreadable cache state and
// internal failures.
func Build(ctx context.Context, opts Options) (*Result, error) {
	if len(opts.Trees) == 0 && opts.Tree == nil {
		return nil, ErrNoInputs
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	sink := opts.Progress
	if sink == nil {
		sink = nopSink{}
	}
	timer := observ.NewTimer()
	res := &Result{Files: source.NewFileSet(), Bag: diag.NewBag(opts.MaxDiagnostics)}
	defer func() { res.Timings = timer.Report() }()

	root := trace.Start(ctx, trace.ScopeDriver, "build")
	defer root.End("")
	ctx = trace.WithSpan(ctx, root)

	// load
	idx := timer.Begin("load")
	sink.OnEvent(Event{Stage: StageLoad, Status: StatusWorking})
	tree, raw, err := loadInputs(ctx, opts, res)
	timer.End(idx, "")
	if err != nil {
		return res, err
	}
	if res.Bag.HasErrors() {
		sink.OnEvent(Event{Stage: StageLoad, Status: StatusError})
		return res, nil
	}

	var key Key
	if opts.Cache != nil && raw != nil && !opts.CheckOnly {
		key = CacheKey(opts.Arch, opts.Root, raw)
		var entry CacheEntry
		hit, cerr := opts.Cache.Get(key, &entry)
		switch {
		case cerr != nil:
			diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCache, source.Span{}, "ignoring unreadable cache entry: "+cerr.Error()).Emit()
		case hit:
			trace.Point(trace.FromContext(ctx), trace.ScopePhase, "cache", "hit", root.ID())
			res.Modules, res.Cached = entry.Modules, true
			sink.OnEvent(Event{Stage: StageEmit, Status: StatusDone})
			return res, nil
		}
	}

	// check
	idx = timer.Begin("check")
	sink.OnEvent(Event{Stage: StageCheck, Status: StatusWorking})
	prog, ok, err := check(ctx, tree, opts, res.Bag)
	timer.End(idx, "")
	if err != nil {
		return res, err
	}
	if !ok {
		sink.OnEvent(Event{Stage: StageCheck, Status: StatusError})
		return res, nil
	}
	res.Program = prog
	if opts.CheckOnly {
		sink.OnEvent(Event{Stage: StageCheck, Status: StatusDone})
		return res, nil
	}

	// lower
	idx = timer.Begin("lower")
	res.Modules, err = lowerAll(ctx, prog, opts, sink)
	timer.End(idx, "")
	if err != nil {
		sink.OnEvent(Event{Stage: StageLower, Status: StatusError})
		return res, err
	}

	if opts.Cache != nil && raw != nil && res.Bag.Len() == 0 {
		idx = timer.Begin("cache")
		if perr := opts.Cache.Put(key, &CacheEntry{Schema: cacheSchemaVersion, Target: opts.Arch.Triple, Modules: res.Modules}); perr != nil {
			diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCache, source.Span{}, "cannot store cache entry: "+perr.Error()).Emit()
		}
		timer.End(idx, "")
	}
	sink.OnEvent(Event{Stage: StageEmit, Status: StatusDone})
	return res, nil
}

// check validates tree; an invariant panic becomes an InternalError.
func check(ctx context.Context, tree *ast.Tree, opts Options, bag *diag.Bag) (prog *hir.Program, ok bool, err error) {
	sp := trace.Start(ctx, trace.ScopePhase, "check")
	defer func() {
		if r := recover(); r != nil {
			err = newInternalError("check", "", r)
			sp.End("panic")
			return
		}
		sp.WithExtra("errors", itoa(bag.ErrorCount())).End("")
	}()
	prog, ok = sema.Check(tree, sema.Options{
		Arch:   opts.Arch,
		Bag:    bag,
		Root:   slices.Clone(opts.Root),
		Tracer: trace.FromContext(ctx),
		Parent: sp.ID(),
	})
	return prog, ok, nil
}
