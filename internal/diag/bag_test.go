package diag

import (
	"testing"

	"kestrel/internal/source"
)

func TestBagRewindDropsSpeculativeDiagnostics(t *testing.T) {
	bag := NewBag(0)
	r := BagReporter{Bag: bag}
	ReportError(r, SemaTypeMismatch, source.Span{File: 1, Start: 0, End: 1}, "kept").Emit()

	mark := bag.Mark()
	ReportError(r, SemaArgTypeMismatch, source.Span{File: 1, Start: 2, End: 3}, "trial 1").Emit()
	ReportError(r, SemaArgCountMismatch, source.Span{File: 1, Start: 4, End: 5}, "trial 2").Emit()
	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", bag.Len())
	}
	bag.Rewind(mark)
	if bag.Len() != 1 || bag.Items()[0].Message != "kept" {
		t.Fatalf("rewind left %+v", bag.Items())
	}
	if !bag.HasErrors() {
		t.Fatalf("kept error must still count")
	}
}

func TestBagLimitStillCountsErrors(t *testing.T) {
	bag := NewBag(1)
	bag.Add(NewError(SemaTypeMismatch, source.Span{}, "a"))
	if bag.Add(NewError(SemaTypeMismatch, source.Span{}, "b")) {
		t.Fatalf("second diagnostic should be dropped")
	}
	if bag.ErrorCount() != 2 {
		t.Fatalf("error count = %d", bag.ErrorCount())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, SemaUnknownLabel, source.Span{}, "x").
		WithNote(source.Span{File: 1}, "declared here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("builder emitted %d times", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("note lost")
	}
}

func TestCodeID(t *testing.T) {
	if got := SemaCyclicDependency.ID(); got != "SEM3016" {
		t.Fatalf("id = %s", got)
	}
	if got := ProjManifest.String(); got != "[PRJ5001]: Invalid project manifest" {
		t.Fatalf("string = %s", got)
	}
}
