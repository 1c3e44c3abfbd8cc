package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"kestrel/internal/hir"
	"kestrel/internal/lower"
	"kestrel/internal/trace"
)

// lowerAll lowers every module in parallel. Outputs keep program order.
func lowerAll(ctx context.Context, prog *hir.Program, opts Options, sink ProgressSink) ([]Output, error) {
	sp := trace.Start(ctx, trace.ScopePhase, "lower")
	defer sp.End("")
	ctx = trace.WithSpan(ctx, sp)

	l := lower.New(prog, opts.Arch)
	out := make([]Output, len(prog.Modules))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, m := range prog.Modules {
		name := m.Name()
		sink.OnEvent(Event{File: name, Stage: StageLower, Status: StatusQueued})
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			msp := trace.Start(gctx, trace.ScopeModule, "module:"+name)
			sink.OnEvent(Event{File: name, Stage: StageLower, Status: StatusWorking})
			defer func() {
				if r := recover(); r != nil {
					err = newInternalError("lower", name, r)
					msp.End("panic")
					sink.OnEvent(Event{File: name, Stage: StageLower, Status: StatusError})
				}
			}()
			text := l.Module(m).String()
			msp.WithExtra("funcs", itoa(len(m.Funcs))).End("")
			out[i] = Output{Name: name, Text: text}
			sink.OnEvent(Event{File: name, Stage: StageEmit, Status: StatusDone})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
