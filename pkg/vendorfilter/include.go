package vendorfilter

import (
	"context"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
)

// QueryOptions parameterize the metadata and edge-listing queries of one run.
// Manifests holds the primary manifest path first (empty string means the
// working directory) followed by any sync manifests. Platforms is the
// expanded, concrete triple list; empty means no platform restriction.
type QueryOptions struct {
	Manifests []string
	Platforms []string
	Offline   bool
	Features  cargo.FeatureConfig
	Kind      cargo.DepKind
}

// platformsOrUnfiltered returns the concrete platform list, or the single
// unfiltered sentinel (empty string) when no platform filtering is configured.
func (o *QueryOptions) platformsOrUnfiltered() []string {
	if len(o.Platforms) == 0 {
		return []string{""}
	}
	return o.Platforms
}

// Universe aggregates the full unfiltered package set across all manifests:
// per manifest, one metadata query with the configured feature mode and no
// platform restriction, unioned into one identity-keyed set. This is the
// baseline inclusion and exclusion are later compared against; it must use
// the run's feature mode because feature selection changes which optional
// dependencies exist at all.
func Universe(ctx context.Context, opts QueryOptions) (cargo.Set, error) {
	universe := make(cargo.Set)
	for _, manifest := range opts.Manifests {
		set, err := cargo.Metadata(ctx, cargo.MetadataOptions{
			ManifestPath: manifest,
			Offline:      opts.Offline,
			Features:     opts.Features,
		})
		if err != nil {
			return nil, err
		}
		universe.Union(set)
	}
	return universe, nil
}

// Included computes the per-run inclusion set: the union, over every manifest
// and every configured platform, of the packages the dependency graph
// reports; then, when a dependency-kind constraint is active, the
// intersection with the (name, version) pairs the edge listing reports.
//
// Each (manifest, platform) query is a pure computation; results are combined
// by explicit set union and intersection rather than shared accumulation, so
// the outcome is independent of query order.
func Included(ctx context.Context, opts QueryOptions) (cargo.Set, error) {
	included := make(cargo.Set)
	for _, manifest := range opts.Manifests {
		for _, platform := range opts.platformsOrUnfiltered() {
			set, err := cargo.Metadata(ctx, cargo.MetadataOptions{
				ManifestPath: manifest,
				Platform:     platform,
				Offline:      opts.Offline,
				Features:     opts.Features,
			})
			if err != nil {
				return nil, err
			}
			included.Union(set)
		}
	}

	if opts.Kind == "" || opts.Kind == cargo.DepKindAll {
		return included, nil
	}

	required, err := requiredByKind(ctx, opts)
	if err != nil {
		return nil, err
	}
	for id := range included {
		if !required[cargo.NameVersion{Name: id.Name, Version: id.Version}] {
			delete(included, id)
		}
	}
	return included, nil
}

// requiredByKind unions the edge listing across manifests and platforms. The
// listing does not report source origins, so membership is keyed by
// (name, version) only.
func requiredByKind(ctx context.Context, opts QueryOptions) (map[cargo.NameVersion]bool, error) {
	required := make(map[cargo.NameVersion]bool)
	for _, manifest := range opts.Manifests {
		for _, platform := range opts.platformsOrUnfiltered() {
			pkgs, err := cargo.Tree(ctx, cargo.TreeOptions{
				ManifestPath: manifest,
				Platform:     platform,
				Offline:      opts.Offline,
				Features:     opts.Features,
				Kind:         opts.Kind,
			})
			if err != nil {
				return nil, err
			}
			for _, nv := range pkgs {
				required[nv] = true
			}
		}
	}
	return required, nil
}
