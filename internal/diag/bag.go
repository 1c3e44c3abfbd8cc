package diag

import (
	"sort"
)

// Bag is the append-only diagnostic list of one compilation.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// Mark is a position inside a Bag, used to rewind speculative diagnostics.
type Mark struct {
	items   int
	dropped int
}

// NewBag creates a bag that keeps at most max diagnostics (0 = unlimited).
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 64
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
// Ошибки сверх лимита всё равно учитываются в HasErrors.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		if d.Severity >= SevError {
			b.dropped++
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	if b == nil {
		return false
	}
	if b.dropped > 0 {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// ErrorCount counts error diagnostics including the ones dropped by the limit.
func (b *Bag) ErrorCount() int {
	n := b.dropped
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Mark returns the current end of the bag.
func (b *Bag) Mark() Mark {
	return Mark{items: len(b.items), dropped: b.dropped}
}

// ErrorsSince counts errors reported after m, dropped ones included.
func (b *Bag) ErrorsSince(m Mark) int {
	if m.items > len(b.items) {
		return 0
	}
	n := b.dropped - m.dropped
	for i := m.items; i < len(b.items); i++ {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

// Rewind discards every diagnostic added after m.
// Used only by speculative resolution; a rewound trial must leave no trace.
func (b *Bag) Rewind(m Mark) {
	if m.items < 0 || m.items > len(b.items) {
		return
	}
	clear(b.items[m.items:])
	b.items = b.items[:m.items]
	b.dropped = m.dropped
}

// Merge appends diagnostics from other.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
// для стабильного и детерминированного порядка вывода.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
