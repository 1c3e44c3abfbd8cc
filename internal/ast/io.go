package ast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrVersion reports a tree written by an incompatible parser.
var ErrVersion = errors.New("unsupported syntax tree version")

// Encode writes t as msgpack.
func Encode(w io.Writer, t *Tree) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(t)
}

// Decode reads a tree and checks its format version.
func Decode(r io.Reader) (*Tree, error) {
	var t Tree
	if err := msgpack.NewDecoder(r).Decode(&t); err != nil {
		return nil, err
	}
	if t.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrVersion, t.Version, FormatVersion)
	}
	// absent arenas decode as nil
	if t.Modules == nil {
		t.Modules = NewArena[Module](0)
	}
	if t.Decls == nil {
		t.Decls = NewArena[Decl](0)
	}
	if t.Stmts == nil {
		t.Stmts = NewArena[Stmt](0)
	}
	if t.Exprs == nil {
		t.Exprs = NewArena[Expr](0)
	}
	if t.Types == nil {
		t.Types = NewArena[TypeExpr](0)
	}
	return &t, nil
}

// ReadFile decodes the tree stored at path.
func ReadFile(path string) (*Tree, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile stores t at path.
func WriteFile(path string, t *Tree) (err error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err = Encode(bw, t); err != nil {
		return err
	}
	return bw.Flush()
}
