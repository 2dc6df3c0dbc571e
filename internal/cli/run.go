package cli

import (
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/coreos/cargo-vendor-filterer/pkg/archive"
	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/platforms"
	"github.com/coreos/cargo-vendor-filterer/pkg/vendorfilter"
)

// runRoot executes the vendoring pipeline for the root command.
func runRoot(cmd *cobra.Command, args []string, flags rootFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	filter, err := resolveFilter(anyFilterFlagSet(cmd), flags, logger)
	if err != nil {
		return err
	}

	format := archive.FormatDir
	if flags.format != "" {
		if format, err = archive.ParseFormat(flags.format); err != nil {
			return err
		}
	}

	opts := vendorfilter.Options{
		Format:              format,
		Prefix:              flags.prefix,
		ManifestPath:        flags.manifestPath,
		Sync:                flags.sync,
		Offline:             flags.offline,
		RespectSourceConfig: flags.respectSourceConfig,
		Filter:              filter,
	}
	if len(args) == 1 {
		opts.Output = args[0]
	}

	p := newProgress(logger)
	result, err := vendorfilter.NewRunner(logger).Run(ctx, opts)
	if err != nil {
		return err
	}
	p.done("Filtered vendor directory")

	printSuccess("Vendored %d of %d packages to %s", result.Included, result.Universe, result.Output)
	printDetail("%d kept, %d stubbed, %d pruned", result.Stats.Kept, result.Stats.Stubbed, result.Stats.Pruned)
	return nil
}

// anyFilterFlagSet reports whether the user gave any filter flag on the
// command line.
func anyFilterFlagSet(cmd *cobra.Command) bool {
	for _, name := range filterFlagNames {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// resolveFilter produces the filter configuration of the run. CLI filter
// flags, when any is present, replace the embedded manifest table wholesale;
// otherwise the [package.metadata.vendor-filter] table of the primary
// manifest applies, and its unknown keys are surfaced as warnings.
func resolveFilter(cliSet bool, flags rootFlags, logger *charmlog.Logger) (vendorfilter.Filter, error) {
	if cliSet {
		return filterFromFlags(flags)
	}

	manifest := flags.manifestPath
	if manifest == "" {
		manifest = cargo.ManifestFile
	}
	embedded, warnings, err := vendorfilter.LoadEmbedded(manifest)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		return vendorfilter.Filter{}, err
	}
	if embedded == nil {
		return vendorfilter.Filter{}, nil
	}
	logger.Debug("using embedded filter configuration", "manifest", filepath.Clean(manifest))
	return *embedded, nil
}

// filterFromFlags builds the filter from CLI flags alone.
func filterFromFlags(flags rootFlags) (vendorfilter.Filter, error) {
	f := vendorfilter.Filter{
		Platforms: flags.platforms,
		Features: cargo.FeatureConfig{
			AllFeatures:       flags.allFeatures,
			NoDefaultFeatures: flags.noDefaultFeatures,
			Features:          flags.features,
		},
		VersionedDirs: flags.versionedDirs,
	}
	if flags.tier != "" {
		tier, err := platforms.ParseTier(flags.tier)
		if err != nil {
			return vendorfilter.Filter{}, err
		}
		f.Tier = tier
	}
	if flags.keepDepKinds != "" {
		kind, err := cargo.ParseDepKind(flags.keepDepKinds)
		if err != nil {
			return vendorfilter.Filter{}, err
		}
		f.KeepDepKinds = kind
	}
	for _, raw := range flags.excludes {
		rule, err := vendorfilter.ParseExcludeRule(raw)
		if err != nil {
			return vendorfilter.Filter{}, err
		}
		f.Exclude = append(f.Exclude, rule)
	}
	return f, nil
}
