package mangle

import (
	"fmt"
	"slices"
)

// PooledString is one emitted string constant. Data carries the trailing NUL.
type PooledString struct {
	Name string
	Data []byte
}

// StringPool deduplicates string literals of one module by exact content.
// Names are assigned in first-use order: .str.0, .str.1, ...
type StringPool struct {
	byContent map[string]int
	entries   []PooledString
}

func NewStringPool() *StringPool {
	return &StringPool{byContent: make(map[string]int, 16)}
}

// Intern returns the symbol holding s, creating it on first use.
func (p *StringPool) Intern(s []byte) string {
	if idx, ok := p.byContent[string(s)]; ok {
		return p.entries[idx].Name
	}
	data := make([]byte, len(s)+1)
	copy(data, s)
	name := fmt.Sprintf(".str.%d", len(p.entries))
	p.byContent[string(s)] = len(p.entries)
	p.entries = append(p.entries, PooledString{Name: name, Data: data})
	return name
}

// Len is the number of distinct strings.
func (p *StringPool) Len() int {
	return len(p.entries)
}

// Entries returns the pooled strings in name order.
func (p *StringPool) Entries() []PooledString {
	return slices.Clone(p.entries)
}
