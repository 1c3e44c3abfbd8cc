package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("a/b/../main.kst", []byte("fn main() {\n  return 1;\n}\n"))
	if id == NoFileID {
		t.Fatalf("expected non-zero file id")
	}
	start, end, ok := fs.Resolve(Span{File: id, Start: 14, End: 20})
	if !ok {
		t.Fatalf("span should resolve")
	}
	if start.Line != 2 || start.Col != 3 {
		t.Fatalf("unexpected start %+v", start)
	}
	if end.Line != 2 || end.Col != 9 {
		t.Fatalf("unexpected end %+v", end)
	}
	if got, ok := fs.Lookup("a/main.kst"); !ok || got != id {
		t.Fatalf("lookup by cleaned path failed: %v %v", got, ok)
	}
}

func TestNewlineOffsetBelongsToItsLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("x", []byte("ab\ncd"))
	start, _, _ := fs.Resolve(Span{File: id, Start: 2, End: 2})
	if start.Line != 1 || start.Col != 3 {
		t.Fatalf("newline should be column 3 of line 1, got %+v", start)
	}
	start, _, _ = fs.Resolve(Span{File: id, Start: 3, End: 3})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("expected 2:1, got %+v", start)
	}
}

func TestFileLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.Add("x", []byte("one\ntwo\nthree")))
	if got := f.Line(2); got != "two" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.Line(3); got != "three" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.Line(9); got != "" {
		t.Fatalf("line 9 = %q", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 6}
	b := Span{File: 1, Start: 1, End: 5}
	got := a.Cover(b)
	if got.Start != 1 || got.End != 6 {
		t.Fatalf("cover = %v", got)
	}
	if (Span{}).Cover(a) != a {
		t.Fatalf("unknown span should adopt the other span")
	}
}
