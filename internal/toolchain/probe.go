package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"cdetect/internal/trace"
)

// ScratchName is the probe source created inside the scratch directory.
const ScratchName = "test.c"

const probeSource = "int main(){}\n"

// Outcome is the result of compiling the probe source with one -std= value.
type Outcome struct {
	Standard Standard
	ExitCode int32
}

// Accepted reports whether the compiler exited successfully.
func (o Outcome) Accepted() bool { return o.ExitCode == 0 }

// Prober runs the standards matrix.
type Prober struct {
	Retry RetryPolicy
}

// Populate probes props.Path with DefaultRetry.
func Populate(ctx context.Context, props *Properties, scratchDir string) error {
	return Prober{Retry: DefaultRetry}.Populate(ctx, props, scratchDir)
}

// Populate sets the flavour and appends every accepted standard to
// props.Standards. props.Path must already name the compiler.
//
// scratchDir/test.c is created exclusively, so probes sharing a directory
// run one after another. The file is removed when the run ends; otherwise
// the next probe in the same directory would wait for it forever. The
// object file test.o is left behind.
func (p Prober) Populate(ctx context.Context, props *Properties, scratchDir string) error {
	_, err := p.Report(ctx, props, scratchDir)
	return err
}

// Report is Populate that also returns the outcome of every attempt, in
// Matrix order.
func (p Prober) Report(ctx context.Context, props *Properties, scratchDir string) (outcomes []Outcome, err error) {
	if props == nil || props.Path == "" {
		return nil, errors.New("probe: compiler path is not set")
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeStage, "probe", trace.ParentID(ctx))
	span.WithExtra("compiler", props.Path)
	defer func() {
		span.WithExtra("accepted", strconv.Itoa(len(props.Standards)))
		if err != nil {
			span.End(err.Error())
			return
		}
		span.End("")
	}()
	ctx = trace.WithSpan(ctx, span)

	// only cc-style command lines are supported for now
	props.Flavour = FlavourPosix

	dir, err := filepath.Abs(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("probe: failed to resolve scratch dir: %w", err)
	}
	source := filepath.Join(dir, ScratchName)
	if err := p.acquire(ctx, source); err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(source); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("probe: failed to release %s: %w", source, rmErr))
		}
	}()

	outcomes = make([]Outcome, 0, len(standardFlags))
	for _, std := range Matrix() {
		code, runErr := p.tryStandard(ctx, props, dir, source, std)
		if runErr != nil {
			return outcomes, runErr
		}
		outcomes = append(outcomes, Outcome{Standard: std, ExitCode: code})
		if code == 0 {
			props.accept(std)
		}
	}
	return outcomes, nil
}

func (p Prober) tryStandard(ctx context.Context, props *Properties, dir, source string, std Standard) (int32, error) {
	inv := Invocation{Path: props.Path}.
		With(props.ExtraOpts...).
		With(props.CompileFlags...).
		With("-c", "-std="+std.String(), source)

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeAttempt, "std:"+std.String(), trace.ParentID(ctx))
	cmd := inv.Command(ctx)
	// objects land next to the probe source rather than in the caller's cwd
	cmd.Dir = dir
	code, err := run(ctx, cmd)
	span.WithExtra("exit", strconv.Itoa(int(code)))
	span.End(inv.String())
	return code, err
}

// acquire creates path exclusively, writes the probe source and closes it.
// An existing file means another probe holds the scratch directory; acquire
// waits for it per the retry policy.
func (p Prober) acquire(ctx context.Context, path string) error {
	for attempt := 1; ; attempt++ {
		// #nosec G304 -- path is the scratch file inside a caller-owned dir
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return writeProbeSource(f, path)
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("probe: failed to create %s: %w", path, err)
		}
		if p.Retry.exhausted(attempt) {
			return fmt.Errorf("probe: %s after %d attempts: %w", path, attempt, ErrScratchBusy)
		}
		if err := p.Retry.wait(ctx); err != nil {
			return err
		}
	}
}

func writeProbeSource(f *os.File, path string) error {
	_, writeErr := f.WriteString(probeSource)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return fmt.Errorf("probe: failed to write %s: %w", path, err)
	}
	return nil
}
