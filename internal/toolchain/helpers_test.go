package toolchain

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compilers are shell scripts")
	}
}

func writeExecutable(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	// #nosec G306 -- test compiler must be executable
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// stdOnlyCompiler accepts the listed -std= values and nothing else. It fails
// loudly if the probe source is missing.
const stdOnlyCompiler = `#!/bin/sh
src=""
std=""
for arg in "$@"; do
  case "$arg" in
    -std=*) std="${arg#-std=}" ;;
    *.c) src="$arg" ;;
  esac
done
[ -f "$src" ] || exit 3
grep -q "int main" "$src" || exit 4
case "$std" in
  c99|gnu99) exit 0 ;;
esac
exit 1
`

// markerCompiler "compiles" a source only if it contains COMPILES, touching
// the -o output on success.
const markerCompiler = `#!/bin/sh
out=""
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
    *.c) src="$1" ;;
  esac
  shift
done
grep -q COMPILES "$src" 2>/dev/null || exit 1
: > "$out"
`

func lookupTable(found map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if p, ok := found[name]; ok {
			return p, nil
		}
		return "", &os.PathError{Op: "lookpath", Path: name, Err: os.ErrNotExist}
	}
}
