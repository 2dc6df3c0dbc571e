package cargo

import (
	"context"
	"encoding/json"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// Package is one resolved package as reported by cargo metadata. It carries
// the fields the reconciliation and stubbing stages need; the full metadata
// record is retained in Raw.
type Package struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Source       string          `json:"source"` // empty for local path packages
	ManifestPath string          `json:"manifest_path"`
	Edition      string          `json:"edition"`
	Raw          json.RawMessage `json:"-"`
}

// ID returns the package identity.
func (p *Package) ID() ID {
	return ID{Name: p.Name, Version: p.Version, Source: p.Source}
}

// Registry reports whether the package came from a registry rather than a
// local path. Only registry packages appear in the vendor directory.
func (p *Package) Registry() bool {
	return p.Source != ""
}

// MetadataOptions parameterize one cargo metadata query.
type MetadataOptions struct {
	ManifestPath string        // --manifest-path; empty uses the working directory
	Platform     string        // --filter-platform; empty means no platform restriction
	Offline      bool          // --offline
	Features     FeatureConfig // feature-activation mode
}

// metadataOutput is the subset of the cargo metadata JSON document we read.
type metadataOutput struct {
	Packages []json.RawMessage `json:"packages"`
}

// Metadata queries the dependency graph and returns the package set for the
// given manifest, platform restriction, and feature mode.
func Metadata(ctx context.Context, opts MetadataOptions) (Set, error) {
	args := []string{"metadata", "--format-version=1"}
	args = append(args, opts.Features.args()...)
	if opts.Platform != "" {
		args = append(args, "--filter-platform="+opts.Platform)
	}
	if opts.Offline {
		args = append(args, "--offline")
	}
	if opts.ManifestPath != "" {
		args = append(args, "--manifest-path", opts.ManifestPath)
	}

	out, err := runCargo(ctx, args...)
	if err != nil {
		return nil, err
	}

	var doc metadataOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "cargo metadata output")
	}

	set := make(Set, len(doc.Packages))
	for _, raw := range doc.Packages {
		var pkg Package
		if err := json.Unmarshal(raw, &pkg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "cargo metadata package record")
		}
		pkg.Raw = raw
		set[pkg.ID()] = &pkg
	}
	return set, nil
}
