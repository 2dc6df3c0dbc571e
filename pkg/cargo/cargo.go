// Package cargo is the translation boundary to the external cargo toolchain.
//
// Everything this tool knows about the dependency graph comes from three
// subprocesses: `cargo metadata` (the full package set), `cargo tree` (the
// dependency-edge listing, the only way to filter by edge kind), and
// `cargo vendor` (the unfiltered materializer). This package also models the
// two on-disk formats shared with cargo: the crate manifest (Cargo.toml) and
// the per-crate checksum file (.cargo-checksum.json).
//
// The cargo tree line format and the checksum JSON schema are undocumented
// compatibility contracts; they are isolated here so a toolchain format change
// touches only this package.
package cargo

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strings"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// ManifestFile is the name of the cargo manifest.
const ManifestFile = "Cargo.toml"

// FeatureConfig selects which optional dependencies exist at all. It must be
// passed identically to every cargo invocation in a run, because feature
// selection changes the package universe itself.
type FeatureConfig struct {
	AllFeatures       bool     // --all-features
	NoDefaultFeatures bool     // --no-default-features
	Features          []string // --features a,b,...
}

// args returns the cargo CLI arguments for the feature selection.
func (f FeatureConfig) args() []string {
	var out []string
	if f.AllFeatures {
		out = append(out, "--all-features")
	}
	if f.NoDefaultFeatures {
		out = append(out, "--no-default-features")
	}
	if len(f.Features) > 0 {
		out = append(out, "--features", strings.Join(f.Features, ","))
	}
	return out
}

// runCargo executes a cargo subcommand and returns its stdout. A non-zero
// exit aborts the run with an EXTERNAL_TOOL error carrying captured stderr.
func runCargo(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "cargo", args...)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err,
			"cargo %s: %s", args[0], strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}

// ID is the identity of a package: name, exact version, and source origin.
// Source is empty for local path packages and names the registry otherwise,
// so two crates with equal name and version but different origins stay
// distinct.
type ID struct {
	Name    string
	Version string
	Source  string
}

// Set is an identity-keyed package collection.
type Set map[ID]*Package

// Union adds every package of other into s.
func (s Set) Union(other Set) {
	for id, pkg := range other {
		s[id] = pkg
	}
}

// Sorted returns the packages ordered by (name, version, source) for
// deterministic iteration.
func (s Set) Sorted() []*Package {
	out := make([]*Package, 0, len(s))
	for _, pkg := range s {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].Source < out[j].Source
	})
	return out
}
