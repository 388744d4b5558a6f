package toolchain

import (
	"context"
	"slices"
	"strings"
	"testing"

	"cdetect/internal/config"
	"cdetect/internal/trace"
)

func TestAddTarget(t *testing.T) {
	cross := config.Config{Host: hostTriple, Target: targetTriple}
	cases := []struct {
		name string
		cfg  config.Config
		path string
		want []string
	}{
		{name: "native", cfg: config.Config{Host: hostTriple, Target: hostTriple}, path: "/usr/bin/clang", want: nil},
		{name: "no target", cfg: config.Config{Host: hostTriple}, path: "/usr/bin/clang", want: nil},
		{name: "cross generic", cfg: cross, path: "/usr/bin/clang", want: []string{"--target", targetTriple}},
		{name: "cross prefixed cc", cfg: cross, path: "/usr/bin/" + targetTriple + "-cc", want: nil},
		{name: "cross prefixed gcc", cfg: cross, path: "/opt/x/" + targetTriple + "-gcc-13", want: nil},
		{name: "prefix in directory only", cfg: cross, path: "/opt/" + targetTriple + "/bin/cc", want: []string{"--target", targetTriple}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.cfg)
			got := r.AddTarget(Invocation{Path: tc.path}, tc.path)
			if !slices.Equal(got.Args, tc.want) {
				t.Errorf("Args = %v, want %v", got.Args, tc.want)
			}
		})
	}
}

func TestAddTargetNeverDuplicates(t *testing.T) {
	r := NewResolver(config.Config{Host: hostTriple, Target: targetTriple})
	path := "/usr/bin/" + targetTriple + "-cc"
	inv := Invocation{Path: path}
	for n := 0; n < 3; n++ {
		inv = r.AddTarget(inv, path)
	}
	if len(inv.Args) != 0 {
		t.Errorf("Args = %v, want none", inv.Args)
	}
}

func TestInvocationWithCopies(t *testing.T) {
	base := Invocation{Path: "/usr/bin/cc", Args: make([]string, 1, 8)}
	base.Args[0] = "--target"

	a := base.With("a")
	b := base.With("b")
	if a.Args[1] != "a" || b.Args[1] != "b" {
		t.Fatalf("builders alias each other: a=%v b=%v", a.Args, b.Args)
	}
	if len(base.Args) != 1 {
		t.Errorf("base modified: %v", base.Args)
	}
	if got := a.String(); got != "/usr/bin/cc --target a" {
		t.Errorf("String() = %q", got)
	}
}

func TestPrepare(t *testing.T) {
	r := &Resolver{
		Config:   config.Config{Host: hostTriple, Target: targetTriple},
		LookPath: lookupTable(map[string]string{"clang": "/usr/bin/clang"}),
	}
	inv, ok := r.Prepare(context.Background())
	if !ok {
		t.Fatal("Prepare() found nothing")
	}
	if inv.Path != "/usr/bin/clang" || !slices.Equal(inv.Args, []string{"--target", targetTriple}) {
		t.Errorf("Prepare() = %+v", inv)
	}

	r.LookPath = lookupTable(nil)
	if _, ok := r.Prepare(context.Background()); ok {
		t.Error("Prepare() should fail without a compiler")
	}
}

func TestPropertiesSeeded(t *testing.T) {
	r := &Resolver{
		Config: config.Config{
			Host:    hostTriple,
			Target:  targetTriple,
			CFlags:  "-O2 -g",
			LDFlags: "-lm",
		},
		LookPath: lookupTable(map[string]string{"clang": "/usr/bin/clang"}),
	}
	props, ok := r.Properties(context.Background())
	if !ok {
		t.Fatal("Properties() found nothing")
	}
	if props.Path != "/usr/bin/clang" {
		t.Errorf("Path = %q", props.Path)
	}
	if !slices.Equal(props.ExtraOpts, []string{"--target", targetTriple}) {
		t.Errorf("ExtraOpts = %v", props.ExtraOpts)
	}
	if !slices.Equal(props.CompileFlags, []string{"-O2", "-g"}) || !slices.Equal(props.LinkFlags, []string{"-lm"}) {
		t.Errorf("flags = %v / %v", props.CompileFlags, props.LinkFlags)
	}
	if props.Target == nil || props.Target.Arch != "aarch64" {
		t.Errorf("Target = %+v", props.Target)
	}
	if props.Flavour != FlavourUnknown || len(props.Standards) != 0 {
		t.Errorf("unprobed properties carry probe results: %+v", props)
	}
}

func TestPropertiesNotesMSVCTarget(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	r := &Resolver{
		Config:   config.Config{Host: hostTriple, Target: "x86_64-pc-windows-msvc"},
		LookPath: lookupTable(map[string]string{"clang": "/usr/bin/clang"}),
	}
	props, ok := r.Properties(ctx)
	if !ok {
		t.Fatal("Properties() not found")
	}
	if props.Target == nil || !props.Target.IsMSVC() {
		t.Fatalf("Target = %v, want msvc triple", props.Target)
	}

	var noted bool
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Name == "target" && strings.Contains(ev.Detail, "msvc") {
			noted = true
		}
	}
	if !noted {
		t.Error("no trace point for msvc target")
	}
}
