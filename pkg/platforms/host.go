package platforms

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// HostTargets enumerates every target triple known to the host toolchain by
// running `rustc --print target-list`. It is only invoked when a wildcard
// pattern must be expanded and no tier is configured.
func HostTargets(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "rustc", "--print", "target-list")

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err,
			"rustc --print target-list: %s", strings.TrimSpace(errBuf.String()))
	}

	var targets []string
	for _, line := range strings.Split(out.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			targets = append(targets, line)
		}
	}
	return targets, nil
}
