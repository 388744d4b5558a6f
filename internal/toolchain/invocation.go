package toolchain

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"cdetect/internal/trace"
	"cdetect/internal/triple"
)

var execCommandContext = exec.CommandContext

// Invocation is a compiler command line under construction. Methods return
// modified copies; an Invocation is never changed in place.
type Invocation struct {
	Path string
	Args []string
}

// With returns a copy with args appended.
func (inv Invocation) With(args ...string) Invocation {
	out := make([]string, 0, len(inv.Args)+len(args))
	out = append(out, inv.Args...)
	out = append(out, args...)
	return Invocation{Path: inv.Path, Args: out}
}

// Command builds the process. Standard streams are left nil, which
// connects them to the null device.
func (inv Invocation) Command(ctx context.Context) *exec.Cmd {
	return execCommandContext(ctx, inv.Path, inv.Args...)
}

func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Path
	}
	return inv.Path + " " + strings.Join(inv.Args, " ")
}

// Customizer rewrites a prepared invocation before positional arguments are
// added.
type Customizer func(Invocation) Invocation

// AddTarget appends --target <target> when cross compiling, unless the
// executable's file name already starts with the target.
func (r *Resolver) AddTarget(inv Invocation, path string) Invocation {
	if !r.Config.IsCross() {
		return inv
	}
	target := r.Config.Target
	if strings.HasPrefix(filepath.Base(path), target) {
		return inv
	}
	return inv.With("--target", target)
}

// Prepare resolves the compiler and returns an invocation ready for
// arguments.
func (r *Resolver) Prepare(ctx context.Context) (Invocation, bool) {
	path, ok := r.Resolve(ctx)
	if !ok {
		return Invocation{}, false
	}
	return r.AddTarget(Invocation{Path: path}, path), true
}

// Properties prepares the compiler and seeds Properties from the
// configuration. The result has not been probed yet.
func (r *Resolver) Properties(ctx context.Context) (*Properties, bool) {
	inv, ok := r.Prepare(ctx)
	if !ok {
		return nil, false
	}
	props := &Properties{
		Path:         inv.Path,
		ExtraOpts:    inv.Args,
		CompileFlags: r.Config.CompileFlags(),
		LinkFlags:    r.Config.LinkFlags(),
	}
	target := r.Config.Target
	if target == "" {
		target = r.Config.Host
	}
	if target != "" {
		tracer := trace.FromContext(ctx)
		if t, err := triple.Parse(target); err == nil {
			props.Target = &t
			if t.IsMSVC() {
				// cl.exe is never selected; the compiler found is driven with cc-style flags
				trace.Point(tracer, trace.ScopeStage, "target", "msvc target without cl: "+target, trace.ParentID(ctx))
			}
		} else {
			trace.Point(tracer, trace.ScopeStage, "target", err.Error(), trace.ParentID(ctx))
		}
	}
	return props, true
}
