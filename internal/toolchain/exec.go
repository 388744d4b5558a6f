package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"fortio.org/safecast"
)

// exitSpawnFailed marks an Outcome whose process never ran.
const exitSpawnFailed int32 = -1

// run executes cmd and returns its exit status. A non-zero exit is not an
// error; failing to start the process, or cancellation, is.
func run(ctx context.Context, cmd *exec.Cmd) (int32, error) {
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return exitSpawnFailed, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code, convErr := safecast.Conv[int32](exitErr.ExitCode())
		if convErr != nil || code == 0 {
			// signalled processes report -1; never report success here
			code = exitSpawnFailed
		}
		return code, nil
	}
	return exitSpawnFailed, fmt.Errorf("failed to run %s: %w", cmd.Path, err)
}
