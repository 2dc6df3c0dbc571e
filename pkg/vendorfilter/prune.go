package vendorfilter

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// PruneCrate removes the given relative path patterns inside a retained crate
// and repairs its checksum manifest. Patterns may contain glob
// metacharacters; a pattern matching nothing on disk is a warning, not an
// error, because exclude rules commonly cover crates that only carry the
// offending paths in some versions.
//
// After deletion, every checksum entry that equals, lives under, or
// glob-matches a removed path is dropped. A pass that deleted at least one
// path but removed no checksum entries violates the checksum-manifest
// invariant and aborts the run.
func PruneCrate(crateDir string, patterns []string, warnf func(string, ...any)) error {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	checksum, err := cargo.LoadChecksum(crateDir)
	if err != nil {
		return err
	}
	before := len(checksum.Files)

	var removed []string // crate-relative paths deleted from disk
	for _, pattern := range patterns {
		if filepath.IsAbs(pattern) {
			return errors.New(errors.ErrCodeConfig, "exclude path %q must be relative", pattern)
		}
		// A path like "../other" or "." would delete outside the crate (or
		// the crate itself) before the checksum invariant could catch it.
		if clean := filepath.Clean(pattern); clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return errors.New(errors.ErrCodeConfig, "exclude path %q must stay inside the crate", pattern)
		}
		matches, err := filepath.Glob(filepath.Join(crateDir, pattern))
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfig, err, "exclude pattern %q", pattern)
		}
		if len(matches) == 0 {
			warnf("exclude pattern %q matched nothing in %s", pattern, filepath.Base(crateDir))
			continue
		}
		for _, match := range matches {
			rel, err := filepath.Rel(crateDir, match)
			if err != nil {
				return errors.Wrap(errors.ErrCodeConfig, err, "exclude pattern %q", pattern)
			}
			if err := os.RemoveAll(match); err != nil {
				return errors.Wrap(errors.ErrCodeLayout, err, "removing %s", match)
			}
			removed = append(removed, filepath.ToSlash(rel))
		}
	}
	if len(removed) == 0 {
		return nil
	}

	for file := range checksum.Files {
		if checksumEntryRemoved(file, removed, patterns) {
			delete(checksum.Files, file)
		}
	}
	if len(checksum.Files) >= before {
		return errors.New(errors.ErrCodeIntegrityInvariant,
			"pruned %d path(s) in %s but no checksum entries were removed", len(removed), crateDir)
	}
	return checksum.Save(crateDir)
}

// checksumEntryRemoved reports whether the checksum entry belongs to a
// deleted path: equal to or nested under a removed path, or matching one of
// the glob patterns directly.
func checksumEntryRemoved(file string, removed, patterns []string) bool {
	for _, r := range removed {
		if file == r || strings.HasPrefix(file, r+"/") {
			return true
		}
	}
	for _, p := range patterns {
		if ok, _ := path.Match(filepath.ToSlash(p), file); ok {
			return true
		}
	}
	return false
}
