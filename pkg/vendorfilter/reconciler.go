package vendorfilter

import (
	"os"
	"path/filepath"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// ReconcileStats summarizes what the directory reconciliation did.
type ReconcileStats struct {
	Kept    int // crates retained with full content
	Stubbed int // crates replaced with placeholders
	Pruned  int // retained crates that had paths excluded
}

// ReconcileDir walks the materialized vendor directory and brings it in line
// with the inclusion decision: crates absent from keys are replaced with
// stubs, retained crates have their exclude rules applied.
//
// The top-level entry list is snapshotted in full before any mutation, since
// iterating a directory while deleting from it is undefined. Exact-name rules
// and wildcard rules run as two independent passes over a crate, in that
// order; pruning is idempotent, so the double application is safe.
func ReconcileDir(vendorDir string, keys map[string]cargo.ID, exclude []ExcludeRule, warnf func(string, ...any)) (ReconcileStats, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	var stats ReconcileStats

	entries, err := os.ReadDir(vendorDir)
	if err != nil {
		return stats, errors.Wrap(errors.ErrCodeLayout, err, "reading vendor directory %s", vendorDir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			// cargo vendor writes only crate directories at the top level.
			warnf("ignoring unexpected file %s in vendor directory", e.Name())
			continue
		}
		names = append(names, e.Name())
	}

	onDisk := make(map[string]bool, len(names))
	for _, name := range names {
		onDisk[name] = true
	}
	for key, id := range keys {
		if !onDisk[key] {
			return stats, errors.New(errors.ErrCodeLayout,
				"included package %s@%s not found at %s after vendoring", id.Name, id.Version, key)
		}
	}

	for _, name := range names {
		crateDir := filepath.Join(vendorDir, name)
		id, included := keys[name]
		if !included {
			if err := StubCrate(crateDir); err != nil {
				return stats, err
			}
			stats.Stubbed++
			continue
		}
		stats.Kept++

		pruned := false
		for _, patterns := range [][]string{
			rulePatterns(exclude, id.Name),
			rulePatterns(exclude, "*"),
		} {
			if len(patterns) == 0 {
				continue
			}
			if err := PruneCrate(crateDir, patterns, warnf); err != nil {
				return stats, err
			}
			pruned = true
		}
		if pruned {
			stats.Pruned++
		}
	}
	return stats, nil
}

// rulePatterns collects the path patterns of every exclude rule whose name
// equals the given name.
func rulePatterns(rules []ExcludeRule, name string) []string {
	var out []string
	for _, r := range rules {
		if r.Name == name {
			out = append(out, r.Path)
		}
	}
	return out
}
