package source

import (
	"fmt"
)

// FileID identifies a source file inside a FileSet. Zero means "no file".
type FileID uint32

// NoFileID marks spans that do not point at any file (synthetic nodes).
const NoFileID FileID = 0

// Span is a half-open byte range inside one file.
// Syntax trees arrive with spans already attached by the external parser.
type Span struct {
	File  FileID `msgpack:"f"`
	Start uint32 `msgpack:"s"` // в байтах включительно
	End   uint32 `msgpack:"e"` // в байтах не включительно
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Known reports whether the span points into a registered file.
func (s Span) Known() bool {
	return s.File != NoFileID
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover widens s so it also contains other. Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if !s.Known() {
		return other
	}
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
