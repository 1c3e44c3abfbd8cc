package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"kestrel/internal/ast"
	"kestrel/internal/diag"
	"kestrel/internal/source"
	"kestrel/internal/trace"
)

type loaded struct {
	path string
	data []byte
	tree *ast.Tree
	err  error
	code diag.Code
}

// loadInputs reads and decodes every tree in parallel, then attaches them to
// res.Files and merges them in input order. raw holds the file contents for
// the cache key; it is nil for an in-memory tree.
func loadInputs(ctx context.Context, opts Options, res *Result) (tree *ast.Tree, raw [][]byte, err error) {
	if opts.Tree != nil {
		opts.Tree.Attach(res.Files)
		return opts.Tree, nil, nil
	}
	sp := trace.Start(ctx, trace.ScopePhase, "load")
	defer sp.End("")
	ctx = trace.WithSpan(ctx, sp)

	results := make([]loaded, len(opts.Trees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(opts.Trees)))
	for i, path := range opts.Trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fsp := trace.Start(gctx, trace.ScopeModule, "tree:"+path)
			defer fsp.End("")
			results[i] = readTree(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	rep := diag.BagReporter{Bag: res.Bag}
	raw = make([][]byte, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			diag.ReportError(rep, r.code, source.Span{}, fmt.Sprintf("%s: %v", r.path, r.err)).Emit()
			continue
		}
		r.tree.Attach(res.Files)
		if tree == nil {
			tree = r.tree
		} else {
			tree.Append(r.tree)
		}
		raw = append(raw, r.data)
	}
	return tree, raw, nil
}

func readTree(path string) loaded {
	// #nosec G304 -- inputs are named by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return loaded{path: path, err: err, code: diag.IOLoadFailed}
	}
	t, err := ast.Decode(bytes.NewReader(data))
	if err != nil {
		return loaded{path: path, err: err, code: diag.IODecode}
	}
	return loaded{path: path, data: data, tree: t}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
