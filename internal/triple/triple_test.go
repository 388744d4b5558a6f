package triple

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Triple
	}{
		{in: "x86_64-unknown-linux-gnu", want: Triple{Arch: "x86_64", Vendor: "unknown", OS: "linux", Env: "gnu"}},
		{in: "aarch64-linux-android", want: Triple{Arch: "aarch64", OS: "linux", Env: "android"}},
		{in: "x86_64-pc-windows-msvc", want: Triple{Arch: "x86_64", Vendor: "pc", OS: "windows", Env: "msvc"}},
		{in: "wasm32-wasi", want: Triple{Arch: "wasm32", OS: "wasi"}},
		{in: "thumbv7em-none-eabihf", want: Triple{Arch: "thumbv7em", OS: "none", Env: "eabihf"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tc.want.raw = tc.in
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
			if got.String() != tc.in {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: err = %v", err)
	}
	for _, in := range []string{"x86_64", "x86_64--linux"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		}
	}
}

func TestIsMSVC(t *testing.T) {
	tr, err := Parse("x86_64-pc-windows-msvc")
	if err != nil {
		t.Fatal(err)
	}
	if !tr.IsMSVC() {
		t.Error("expected msvc")
	}
}
