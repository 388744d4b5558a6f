package toolchain

import (
	"fmt"
	"slices"

	"cdetect/internal/triple"
)

// Flavour is the command-line dialect of a compiler.
type Flavour uint8

const (
	FlavourUnknown Flavour = iota // not detected
	FlavourPosix                  // gcc, clang and friends
	FlavourMSVC                   // cl.exe; never detected yet
)

func (f Flavour) String() string {
	switch f {
	case FlavourUnknown:
		return "unknown"
	case FlavourPosix:
		return "posix"
	case FlavourMSVC:
		return "msvc"
	default:
		return fmt.Sprintf("flavour(%d)", uint8(f))
	}
}

// Standard is a language standard selectable with -std=.
// New values may be added; switch statements should keep a default branch.
type Standard uint8

const (
	StdUnknown Standard = iota
	C89
	C95
	C99
	C11
	C18
	C2x
	Cxx98
	Cxx03
	Cxx11
	Cxx14
	Cxx17
	Cxx20
	Cxx2x
	Gnu89
	Gnu95
	Gnu99
	Gnu11
	Gnu18
	Gnu2x
	Gxx98
	Gxx03
	Gxx11
	Gxx14
	Gxx17
	Gxx20
	Gxx2x
)

var standardFlags = [...]string{
	C89:   "c89",
	C95:   "c95",
	C99:   "c99",
	C11:   "c11",
	C18:   "c18",
	C2x:   "c2x",
	Cxx98: "c++98",
	Cxx03: "c++03",
	Cxx11: "c++11",
	Cxx14: "c++14",
	Cxx17: "c++17",
	Cxx20: "c++20",
	Cxx2x: "c++2x",
	Gnu89: "gnu89",
	Gnu95: "gnu95",
	Gnu99: "gnu99",
	Gnu11: "gnu11",
	Gnu18: "gnu18",
	Gnu2x: "gnu2x",
	Gxx98: "g++98",
	Gxx03: "g++03",
	Gxx11: "g++11",
	Gxx14: "g++14",
	Gxx17: "g++17",
	Gxx20: "g++20",
	Gxx2x: "g++2x",
}

// String returns the text passed after -std=.
func (s Standard) String() string {
	if s == StdUnknown || int(s) >= len(standardFlags) {
		return "unknown"
	}
	return standardFlags[s]
}

// ParseStandard maps -std= text back to a Standard.
func ParseStandard(text string) (Standard, bool) {
	for i, flag := range standardFlags {
		if flag != "" && flag == text {
			return Standard(i), true
		}
	}
	return StdUnknown, false
}

// Matrix returns every probed standard in probe order: ISO C, ISO C++,
// GNU C, GNU C++, each oldest first.
func Matrix() []Standard {
	out := make([]Standard, 0, len(standardFlags)-1)
	for s := C89; s <= Gxx2x; s++ {
		out = append(out, s)
	}
	return out
}

// Properties describes a resolved compiler. The probe fills in Flavour and
// appends to Standards; everything else belongs to the caller.
type Properties struct {
	Path         string         // absolute path to the compiler
	ExtraOpts    []string       // always follow Path
	CompileFlags []string       // for compile-only invocations
	LinkFlags    []string       // empty when the compiler does not link
	Target       *triple.Triple // nil when unknown
	Flavour      Flavour
	Standards    []Standard // accepted, in Matrix order
}

// Supports reports whether std was observed to be accepted.
func (p *Properties) Supports(std Standard) bool {
	return p != nil && slices.Contains(p.Standards, std)
}

func (p *Properties) accept(std Standard) {
	if !p.Supports(std) {
		p.Standards = append(p.Standards, std)
	}
}
