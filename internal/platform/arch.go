package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTarget is returned by ParseTarget for unsupported architectures.
var ErrUnknownTarget = errors.New("unknown target")

// DefaultTriple is used when neither manifest nor flags pick a target.
const DefaultTriple = "x86_64-unknown-linux-gnu"

type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// Arch describes the compilation target. Immutable once built.
type Arch struct {
	Triple    string
	PtrSize   int // bytes: 1, 2, 4 or 8
	ByteOrder ByteOrder

	// CMaxAlign caps scalar alignment inside C aggregates (0 = no cap).
	CMaxAlign int

	// Constants are the build-time constants exposed through the build module.
	Constants map[string]int64
}

// ParseTarget derives pointer size and byte order from a target triple.
func ParseTarget(triple string) (Arch, error) {
	triple = strings.TrimSpace(triple)
	if triple == "" {
		triple = DefaultTriple
	}
	parts := strings.Split(triple, "-")
	cpu := strings.ToLower(parts[0])
	osName := ""
	if len(parts) >= 3 {
		osName = strings.ToLower(parts[2])
	}
	a := Arch{Triple: triple}
	switch {
	case cpu == "x86_64" || cpu == "amd64":
		a.PtrSize = 8
	case cpu == "aarch64" || cpu == "arm64":
		a.PtrSize = 8
	case cpu == "aarch64_be":
		a.PtrSize, a.ByteOrder = 8, BigEndian
	case cpu == "i386" || cpu == "i486" || cpu == "i586" || cpu == "i686" || cpu == "x86":
		a.PtrSize = 4
		if !strings.HasPrefix(osName, "windows") {
			a.CMaxAlign = 4
		}
	case cpu == "armeb" || cpu == "thumbeb":
		a.PtrSize, a.ByteOrder = 4, BigEndian
	case strings.HasPrefix(cpu, "arm") || strings.HasPrefix(cpu, "thumb"):
		a.PtrSize = 4
	case cpu == "wasm32" || cpu == "riscv32":
		a.PtrSize = 4
	case cpu == "wasm64" || cpu == "riscv64" || cpu == "loongarch64":
		a.PtrSize = 8
	case cpu == "powerpc64le" || cpu == "ppc64le":
		a.PtrSize = 8
	case cpu == "powerpc64" || cpu == "ppc64" || cpu == "s390x" || cpu == "sparc64":
		a.PtrSize, a.ByteOrder = 8, BigEndian
	case cpu == "powerpc" || cpu == "ppc" || cpu == "mips" || cpu == "sparc":
		a.PtrSize, a.ByteOrder = 4, BigEndian
	case cpu == "mipsel":
		a.PtrSize = 4
	case cpu == "mips64":
		a.PtrSize, a.ByteOrder = 8, BigEndian
	case cpu == "mips64el":
		a.PtrSize = 8
	case cpu == "avr":
		a.PtrSize, a.CMaxAlign = 2, 1
	case cpu == "msp430":
		a.PtrSize, a.CMaxAlign = 2, 2
	default:
		return Arch{}, fmt.Errorf("%w: %q", ErrUnknownTarget, triple)
	}
	return a, nil
}

// MustParseTarget is ParseTarget for known-good triples in tests and defaults.
func MustParseTarget(triple string) Arch {
	a, err := ParseTarget(triple)
	if err != nil {
		panic(err)
	}
	return a
}

// WithConstants returns a copy of a carrying the given build constants.
func (a Arch) WithConstants(c map[string]int64) Arch {
	out := a
	out.Constants = make(map[string]int64, len(c))
	for k, v := range c {
		out.Constants[k] = v
	}
	return out
}

// PtrBits is the pointer width in bits.
func (a Arch) PtrBits() int {
	return a.PtrSize * 8
}

// Resolve maps int/uint onto the fixed-width type matching the pointer size.
func (a Arch) Resolve(b Builtin) Builtin {
	switch b {
	case Int:
		switch a.PtrSize {
		case 1:
			return Int8
		case 2:
			return Int16
		case 4:
			return Int32
		case 8:
			return Int64
		}
	case Uint:
		switch a.PtrSize {
		case 1:
			return Uint8
		case 2:
			return Uint16
		case 4:
			return Uint32
		case 8:
			return Uint64
		}
	default:
		return b
	}
	panic(fmt.Errorf("platform: unsupported pointer size %d", a.PtrSize))
}

// Bits returns the value width of b. bool is 1 bit wide, void 0.
func (a Arch) Bits(b Builtin) int {
	switch a.Resolve(b) {
	case Void:
		return 0
	case Bool:
		return 1
	case Byte, Int8, Uint8:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	case Null:
		return a.PtrBits()
	}
	panic(fmt.Errorf("platform: no width for builtin %s", b))
}

// SizeOf returns the storage size of b in bytes.
func (a Arch) SizeOf(b Builtin) int {
	switch b {
	case Void:
		return 0
	case Bool:
		return 1
	}
	return a.Bits(b) / 8
}

// AlignOf returns the natural alignment of b.
func (a Arch) AlignOf(b Builtin) int {
	if s := a.SizeOf(b); s > 0 {
		return s
	}
	return 1
}

// CAlignOf returns the alignment the platform C ABI gives b inside aggregates.
func (a Arch) CAlignOf(b Builtin) int {
	return a.CAlign(a.AlignOf(b))
}

// CAlign applies the C aggregate alignment cap to a natural alignment.
func (a Arch) CAlign(natural int) int {
	if a.CMaxAlign > 0 && natural > a.CMaxAlign {
		return a.CMaxAlign
	}
	return natural
}
