package toolchain

import (
	"context"
	"path/filepath"
	"strconv"

	"cdetect/internal/trace"
)

// Select is SelectVariant without a customizer.
func (r *Resolver) Select(ctx context.Context, tag string, stems []string, srcDir, binDir string) (string, bool, error) {
	return r.SelectVariant(ctx, tag, stems, srcDir, binDir, nil)
}

// SelectVariant compiles srcDir/<stem><tag>.c to binDir/<stem><tag> for each
// stem in order and returns the first stem that builds. It reports false when
// stems is empty, no compiler can be found, or every variant fails.
//
// customize may add arguments before the source and output are appended.
// CFLAGS and LDFLAGS from the configuration follow them. Failed attempts may
// leave partial output behind.
func (r *Resolver) SelectVariant(ctx context.Context, tag string, stems []string, srcDir, binDir string, customize Customizer) (string, bool, error) {
	if len(stems) == 0 {
		return "", false, nil
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "select", trace.ParentID(ctx))
	span.WithExtra("tag", tag).WithExtra("candidates", strconv.Itoa(len(stems)))
	ctx = trace.WithSpan(ctx, span)

	base, ok := r.Prepare(ctx)
	if !ok {
		span.End("no compiler")
		return "", false, nil
	}
	if customize == nil {
		customize = func(inv Invocation) Invocation { return inv }
	}

	for _, stem := range stems {
		name := stem + tag
		inv := customize(base).
			With(filepath.Join(srcDir, name+".c"), "-o", filepath.Join(binDir, name)).
			With(r.Config.CompileFlags()...).
			With(r.Config.LinkFlags()...)

		attempt := trace.Begin(trace.FromContext(ctx), trace.ScopeAttempt, "variant:"+stem, trace.ParentID(ctx))
		code, err := run(ctx, inv.Command(ctx))
		attempt.WithExtra("exit", strconv.Itoa(int(code)))
		attempt.End(inv.String())
		if err != nil {
			span.End(err.Error())
			return "", false, err
		}
		if code == 0 {
			span.End(stem)
			return stem, true, nil
		}
	}
	span.End("none compiled")
	return "", false, nil
}
