// Package cli implements the cargo-vendor-filterer command-line interface.
//
// The tool is single-purpose, so the vendor operation hangs off the root
// command directly: cargo invokes it as `cargo vendor-filterer [flags]
// [OUTPUT]`. Filter configuration comes from CLI flags or, when none of the
// filter flags are given, from the [package.metadata.vendor-filter] table of
// the primary manifest.
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/coreos/cargo-vendor-filterer/pkg/buildinfo"
)

// filterFlagNames are the flags that, when any is set, replace the embedded
// manifest configuration wholesale.
var filterFlagNames = []string{
	"platform",
	"tier",
	"exclude-crate-path",
	"all-features",
	"no-default-features",
	"features",
	"keep-dep-kinds",
	"versioned-dirs",
}

// rootFlags collects every flag of the root command.
type rootFlags struct {
	platforms           []string
	tier                string
	excludes            []string
	manifestPath        string
	allFeatures         bool
	noDefaultFeatures   bool
	features            []string
	keepDepKinds        string
	format              string
	prefix              string
	offline             bool
	respectSourceConfig bool
	versionedDirs       bool
	sync                []string
}

// Execute runs the cargo-vendor-filterer CLI and returns an error if the run
// fails. The logger is attached to the context and accessible via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		flags   rootFlags
		verbose bool
	)

	root := &cobra.Command{
		Use:   "cargo-vendor-filterer [OUTPUT]",
		Short: "Vendor Rust dependencies filtered by platform, feature, and dependency kind",
		Long: `cargo-vendor-filterer vendors the dependency tree of a Rust project and then
narrows the result to the packages required for the configured platforms,
features, and dependency kinds. Excluded packages are replaced with tiny
stub crates so the vendor directory still satisfies cargo, and the output
can be emitted as a directory or a byte-reproducible tar archive.`,
		Version:      buildinfo.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, flags)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	f := root.Flags()
	f.StringArrayVar(&flags.platforms, "platform", nil, "target triple or wildcard pattern to retain (repeatable)")
	f.StringVar(&flags.tier, "tier", "", "expand wildcard platforms against a curated target tier (1 or 2)")
	f.StringArrayVar(&flags.excludes, "exclude-crate-path", nil, "remove a path inside a retained crate, as name#relative-path (repeatable)")
	f.StringVar(&flags.manifestPath, "manifest-path", "", "path to the primary Cargo.toml")
	f.BoolVar(&flags.allFeatures, "all-features", false, "resolve with all features activated")
	f.BoolVar(&flags.noDefaultFeatures, "no-default-features", false, "resolve without default features")
	f.StringSliceVar(&flags.features, "features", nil, "features to activate (repeatable or comma-separated)")
	f.StringVar(&flags.keepDepKinds, "keep-dep-kinds", "", "dependency kinds to retain (normal, build, dev, no-normal, no-build, no-dev, all)")
	f.StringVar(&flags.format, "format", "", "output format: dir, tar, tar.gz, or tar.zstd (default dir)")
	f.StringVar(&flags.prefix, "prefix", "", "path prefix prepended to every archive entry")
	f.BoolVar(&flags.offline, "offline", false, "pass --offline to cargo")
	f.BoolVar(&flags.respectSourceConfig, "respect-source-config", false, "honor [source] replacement in .cargo/config.toml when vendoring")
	f.BoolVar(&flags.versionedDirs, "versioned-dirs", false, "always include the version in crate directory names")
	f.StringArrayVar(&flags.sync, "sync", nil, "additional Cargo.toml whose dependencies are vendored into the same output (repeatable)")

	return root.ExecuteContext(ctx)
}
