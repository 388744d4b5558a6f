package toolchain

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"cdetect/internal/config"
	"cdetect/internal/trace"
)

// Resolver answers discovery questions against an explicit configuration.
type Resolver struct {
	Config config.Config

	// LookPath searches the executable path; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

// NewResolver returns a Resolver that searches PATH.
func NewResolver(cfg config.Config) *Resolver {
	return &Resolver{Config: cfg, LookPath: exec.LookPath}
}

func (r *Resolver) lookPath(name string) (string, bool) {
	look := r.LookPath
	if look == nil {
		look = exec.LookPath
	}
	found, err := look(name)
	// includes exec.ErrDot: hits through relative PATH entries are refused
	if err != nil {
		return "", false
	}
	if abs, err := filepath.Abs(found); err == nil {
		found = abs
	}
	return found, true
}

// Candidates lists the executable names tried when no override is set, in
// priority order. cl.exe is never listed: only cc-style command lines are
// supported.
func (r *Resolver) Candidates() []string {
	if r.Config.IsCross() {
		target := r.Config.Target
		return []string{target + "-cc", "clang", "lccc", target + "-gcc"}
	}
	return []string{"cc", "clang", "lccc", "gcc"}
}

// Resolve returns the compiler path. An explicit override is final: if it
// cannot be found, or is blank, no candidate is tried.
func (r *Resolver) Resolve(ctx context.Context) (string, bool) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "discover", trace.ParentID(ctx))

	path, ok := r.resolve()
	if ok {
		span.WithExtra("path", path)
		span.End("found")
	} else {
		span.End("not found")
	}
	return path, ok
}

func (r *Resolver) resolve() (string, bool) {
	if r.Config.HasCC() {
		cc := strings.TrimSpace(r.Config.CC)
		if cc == "" {
			return "", false
		}
		if filepath.IsAbs(cc) {
			return cc, true
		}
		return r.lookPath(cc)
	}
	for _, name := range r.Candidates() {
		if path, ok := r.lookPath(name); ok {
			return path, true
		}
	}
	return "", false
}
