package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"cdetect/internal/report"
)

const fakeStdCompiler = `#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    -std=c99|-std=gnu99) exit 0 ;;
  esac
done
exit 1
`

func setupCLI(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compilers are shell scripts")
	}
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cdetect.toml")
	if err := os.WriteFile(cfgPath, []byte("[probe]\nretry_backoff = \"1ms\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"CC", "HOST", "TARGET", "CFLAGS", "LDFLAGS"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatal(err)
		}
	}
	return cfgPath
}

func writeCompiler(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	// #nosec G306 -- test compiler must be executable
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFindCommand(t *testing.T) {
	cfgPath := setupCLI(t)
	cc := writeCompiler(t, "cc", fakeStdCompiler)
	t.Setenv("CC", cc)

	out, err := runCLI(t, "find", "--config", cfgPath, "--color", "off", "--candidates=false", "--invocation=false")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if strings.TrimSpace(out) != cc {
		t.Errorf("find printed %q, want %q", out, cc)
	}
}

func TestFindBlankCCDisablesSearch(t *testing.T) {
	cfgPath := setupCLI(t)
	dir := filepath.Dir(writeCompiler(t, "cc", fakeStdCompiler))
	t.Setenv("PATH", dir)
	t.Setenv("CC", "")

	if _, err := runCLI(t, "find", "--config", cfgPath, "--color", "off", "--candidates=false", "--invocation=false"); err == nil {
		t.Fatal("find succeeded with CC set to an empty value")
	}
}

func TestFindCandidatesCross(t *testing.T) {
	cfgPath := setupCLI(t)
	t.Setenv("HOST", "x86_64-unknown-linux-gnu")
	t.Setenv("TARGET", "aarch64-unknown-linux-gnu")

	out, err := runCLI(t, "find", "--config", cfgPath, "--color", "off", "--candidates", "--invocation=false")
	if err != nil {
		t.Fatalf("find --candidates: %v", err)
	}
	lines := strings.Fields(out)
	want := []string{"aarch64-unknown-linux-gnu-cc", "clang", "lccc", "aarch64-unknown-linux-gnu-gcc"}
	if strings.Join(lines, " ") != strings.Join(want, " ") {
		t.Errorf("candidates = %v, want %v", lines, want)
	}
}

func TestProbeCommandJSON(t *testing.T) {
	cfgPath := setupCLI(t)
	first := writeCompiler(t, "cc", fakeStdCompiler)
	second := writeCompiler(t, "clang", fakeStdCompiler)
	scratch := t.TempDir()

	out, err := runCLI(t, "probe", "--config", cfgPath, "--color", "off",
		"--format", "json", "--scratch", scratch, "--jobs", "2", "--verbose=false",
		first, second)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var entries []report.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for i, want := range []string{first, second} {
		e := entries[i]
		if e.Compiler != want || strings.Join(e.Standards, ",") != "c99,gnu99" || e.Flavour != "posix" {
			t.Errorf("entry %d = %+v", i, e)
		}
	}
}

func TestProbeCommandUnknownCompiler(t *testing.T) {
	cfgPath := setupCLI(t)
	_, err := runCLI(t, "probe", "--config", cfgPath, "--color", "off", "--format", "pretty", "--scratch", t.TempDir(), "no-such-compiler-anywhere")
	if err == nil {
		t.Fatal("expected error for unknown compiler")
	}
}

func TestTryCommand(t *testing.T) {
	cfgPath := setupCLI(t)
	cc := writeCompiler(t, "cc", `#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    *.c) grep -q ok "$arg" && exit 0 ;;
  esac
done
exit 1
`)
	t.Setenv("CC", cc)
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "old_cfg.c"), []byte("bad"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "new_cfg.c"), []byte("ok"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "try", "--config", cfgPath, "--color", "off",
		"--tag", "_cfg", "--src", src, "--bin", t.TempDir(), "old", "new")
	if err != nil {
		t.Fatalf("try: %v", err)
	}
	if strings.TrimSpace(out) != "new" {
		t.Errorf("try printed %q, want new", out)
	}
}

func TestVersionJSON(t *testing.T) {
	cfgPath := setupCLI(t)
	out, err := runCLI(t, "version", "--config", cfgPath, "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "cdetect" || payload.Version == "" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	setupCLI(t)
	broken := filepath.Join(t.TempDir(), "cdetect.toml")
	if err := os.WriteFile(broken, []byte("[compiler\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "version", "--config", broken, "--format", "json"); err != nil {
		t.Fatalf("version with broken config: %v", err)
	}
	if _, err := runCLI(t, "find", "--config", broken, "--candidates"); err == nil {
		t.Fatal("find accepted a broken config")
	}
}
