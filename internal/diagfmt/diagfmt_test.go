package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"kestrel/internal/diag"
	"kestrel/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.Add("/work/app/main.ks", []byte("fn main() {\n\tlet x: int8 = 300;\n}\n"))
	bag := diag.NewBag(0)
	d := diag.NewError(diag.SemaLiteralOutOfRange, source.Span{File: id, Start: 27, End: 30}, "300 does not fit in int8").
		WithNote(source.Span{File: id, Start: 20, End: 24}, "declared here")
	bag.Add(d)
	bag.Add(diag.New(diag.SevWarning, diag.IOCache, source.Span{}, "cache unavailable"))
	return bag, fs
}

func TestPrettyMarksSpanAfterTab(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeRelative, BaseDir: "/work", ShowNotes: true})
	out := buf.String()
	lines := strings.Split(out, "\n")
	if lines[0] != "app/main.ks:2:16: error SEM3012: 300 does not fit in int8" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2 |     let x: int8 = 300;" {
		t.Fatalf("source line = %q", lines[1])
	}
	// tab expands to four cells, so the caret sits under "300"
	if lines[2] != "  |                   ^~~" {
		t.Fatalf("caret line = %q", lines[2])
	}
	if !strings.Contains(out, "note: app/main.ks:2:9: declared here") {
		t.Fatalf("missing note:\n%s", out)
	}
	if !strings.Contains(out, "warning IO4004: cache unavailable") {
		t.Fatalf("missing spanless warning:\n%s", out)
	}
	if !strings.HasSuffix(out, "1 error, 1 warning\n") {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestCellsCountsWideRunes(t *testing.T) {
	if got := cells("名前 = 1", len("名前")); got != 4 {
		t.Fatalf("cells = %d, want 4", got)
	}
}

func TestPrettyColorToggle(t *testing.T) {
	bag, fs := sampleBag()
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output has escapes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escapes")
	}
}

func TestJSONPositionsAndLimit(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, PathMode: PathModeBasename, Max: 1}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Errors != 1 {
		t.Fatalf("output = %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Code != "SEM3012" || d.Location.File != "main.ks" || d.Location.StartLine != 2 || d.Location.StartCol != 16 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "declared here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}
