package archive

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// TimestampEnv overrides the archive timestamp with an explicit epoch value,
// taking priority over the commit-derived time. The name follows the
// reproducible-builds convention.
const TimestampEnv = "SOURCE_DATE_EPOCH"

// Timestamp returns the shared modification time for every archive entry:
// the TimestampEnv override when set, otherwise the latest commit time of the
// repository containing dir.
func Timestamp(ctx context.Context, dir string) (time.Time, error) {
	if v := os.Getenv(TimestampEnv); v != "" {
		epoch, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, errors.Wrap(errors.ErrCodeConfig, err,
				"%s must be an integer epoch, got %q", TimestampEnv, v)
		}
		return time.Unix(epoch, 0).UTC(), nil
	}
	return commitTime(ctx, dir)
}

// commitTime queries the version-control log for the latest commit's
// timestamp.
func commitTime(ctx context.Context, dir string) (time.Time, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%ct")
	cmd.Dir = dir

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeExternalTool, err,
			"git log: %s", strings.TrimSpace(errBuf.String()))
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(out.String()), 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeParse, err,
			"unexpected git log output %q", strings.TrimSpace(out.String()))
	}
	return time.Unix(epoch, 0).UTC(), nil
}
