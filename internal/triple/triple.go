// Package triple splits target identity strings such as
// "aarch64-unknown-linux-gnu" into their components. It only knows enough to
// fill in compiler properties; it does not validate architectures.
package triple

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned when parsing an empty string.
var ErrEmpty = errors.New("empty target triple")

// Triple is a parsed target identity.
type Triple struct {
	Arch   string
	Vendor string
	OS     string
	Env    string

	raw string
}

var knownOS = map[string]bool{
	"linux": true, "windows": true, "darwin": true, "macos": true,
	"freebsd": true, "netbsd": true, "openbsd": true, "dragonfly": true,
	"android": true, "ios": true, "wasi": true, "none": true,
	"solaris": true, "illumos": true, "fuchsia": true, "redox": true,
}

// Parse splits s into arch, vendor, os and env.
//
// Two-part triples are arch-os. Three-part triples are arch-vendor-os unless
// the middle part is a known OS, in which case they are arch-os-env.
func Parse(s string) (Triple, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Triple{}, ErrEmpty
	}
	parts := strings.Split(s, "-")
	for _, p := range parts {
		if p == "" {
			return Triple{}, fmt.Errorf("malformed target triple %q", s)
		}
	}

	t := Triple{raw: s, Arch: parts[0]}
	switch len(parts) {
	case 1:
		return Triple{}, fmt.Errorf("malformed target triple %q: missing os", s)
	case 2:
		t.OS = parts[1]
	case 3:
		if knownOS[parts[1]] {
			t.OS, t.Env = parts[1], parts[2]
		} else {
			t.Vendor, t.OS = parts[1], parts[2]
		}
	default:
		t.Vendor, t.OS = parts[1], parts[2]
		t.Env = strings.Join(parts[3:], "-")
	}
	return t, nil
}

// String returns the triple as it was given.
func (t Triple) String() string { return t.raw }

// IsMSVC reports whether the environment is the Microsoft ABI.
func (t Triple) IsMSVC() bool { return t.Env == "msvc" }
