package vendorfilter

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/coreos/cargo-vendor-filterer/pkg/archive"
	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
	"github.com/coreos/cargo-vendor-filterer/pkg/platforms"
)

// Options configure one complete vendoring run.
type Options struct {
	Output              string         // destination path; empty picks the format default
	Format              archive.Format // dir or one of the archive encodings
	Prefix              string         // archive path prefix
	ManifestPath        string         // primary manifest; empty uses the working directory
	Sync                []string       // additional manifests merged into the same vendor dir
	Offline             bool
	RespectSourceConfig bool
	Filter              Filter
}

// ValidateAndSetDefaults fills in the format and output defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = archive.FormatDir
	}
	if o.Output == "" {
		o.Output = o.Format.DefaultOutput()
	}
	return nil
}

// Result summarizes a completed run.
type Result struct {
	Output   string         // final destination path
	Universe int            // unfiltered package count across all manifests
	Included int            // packages surviving platform and kind filtering
	Stats    ReconcileStats // what reconciliation did to the vendor tree
}

// Runner executes the vendoring pipeline. It is stateless apart from the
// logger; the stages run strictly in sequence, and the destructive ones own
// the output directory exclusively for the duration of the run. Two runs
// sharing one output path must be serialized by the caller.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to the default.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run executes the full pipeline: package universe and inclusion resolution
// (pure computation over collaborator output), one unfiltered vendor
// materialization, directory reconciliation, and the optional archive step.
// The first error aborts the run and leaves partial output in place.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if _, err := os.Lstat(opts.Output); err == nil {
		return nil, errors.New(errors.ErrCodeOutputConflict, "output path %s already exists", opts.Output)
	}

	query := QueryOptions{
		Manifests: append([]string{opts.ManifestPath}, opts.Sync...),
		Offline:   opts.Offline,
		Features:  opts.Filter.Features,
		Kind:      opts.Filter.KeepDepKinds,
	}

	start := time.Now()
	universe, err := Universe(ctx, query)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("resolved package universe", "packages", len(universe), "duration", time.Since(start).Round(time.Millisecond))

	query.Platforms, err = r.expandPlatforms(ctx, &opts.Filter)
	if err != nil {
		return nil, err
	}

	included, err := Included(ctx, query)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("computed inclusion set", "included", len(included), "universe", len(universe))

	vendorDir := opts.Output
	var staging string
	if opts.Format != archive.FormatDir {
		staging, err = os.MkdirTemp(filepath.Dir(opts.Output), ".vendor-filterer-")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayout, err, "creating staging directory")
		}
		defer os.RemoveAll(staging)
		vendorDir = filepath.Join(staging, "vendor")
	}

	start = time.Now()
	err = cargo.Vendor(ctx, vendorDir, cargo.VendorOptions{
		ManifestPath:        opts.ManifestPath,
		Sync:                opts.Sync,
		Offline:             opts.Offline,
		RespectSourceConfig: opts.RespectSourceConfig,
		VersionedDirs:       opts.Filter.VersionedDirs,
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Info("vendored full dependency tree", "duration", time.Since(start).Round(time.Millisecond))

	keys, err := DirectoryKeys(included, opts.Filter.VersionedDirs)
	if err != nil {
		return nil, err
	}
	stats, err := ReconcileDir(vendorDir, keys, opts.Filter.Exclude, r.Logger.Warnf)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("reconciled vendor directory",
		"kept", stats.Kept, "stubbed", stats.Stubbed, "pruned", stats.Pruned)

	if opts.Format != archive.FormatDir {
		mtime, err := archive.Timestamp(ctx, manifestDir(opts.ManifestPath))
		if err != nil {
			return nil, err
		}
		err = archive.Build(ctx, vendorDir, opts.Output, archive.BuildOptions{
			Format: opts.Format,
			Prefix: opts.Prefix,
			MTime:  mtime,
			Warnf:  r.Logger.Warnf,
		})
		if err != nil {
			return nil, err
		}
		r.Logger.Info("wrote reproducible archive", "path", opts.Output, "mtime", mtime.Format(time.RFC3339))
	}

	return &Result{
		Output:   opts.Output,
		Universe: len(universe),
		Included: len(included),
		Stats:    stats,
	}, nil
}

// expandPlatforms resolves the configured platform patterns to concrete
// triples. Wildcard patterns expand against the curated tier list when a tier
// is configured, avoiding any subprocess; otherwise against the host
// toolchain's enumeration.
func (r *Runner) expandPlatforms(ctx context.Context, f *Filter) ([]string, error) {
	if len(f.Platforms) == 0 {
		return nil, nil
	}
	var known []string
	if platforms.NeedsKnownTriples(f.Platforms) {
		if f.Tier != platforms.TierNone {
			known = f.Tier.Targets()
		} else {
			var err error
			if known, err = platforms.HostTargets(ctx); err != nil {
				return nil, err
			}
		}
	}
	expanded := platforms.Expand(f.Platforms, known)
	r.Logger.Debug("expanded platform patterns", "patterns", len(f.Platforms), "platforms", len(expanded))
	return expanded, nil
}

// manifestDir returns the directory whose history supplies the archive
// timestamp.
func manifestDir(manifestPath string) string {
	if manifestPath == "" {
		return "."
	}
	return filepath.Dir(manifestPath)
}
