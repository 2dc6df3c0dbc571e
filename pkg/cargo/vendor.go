package cargo

import "context"

// VendorOptions parameterize the full-tree materializer.
type VendorOptions struct {
	ManifestPath        string   // --manifest-path; empty uses the working directory
	Sync                []string // additional manifests merged into the same vendor dir
	Offline             bool     // --offline
	RespectSourceConfig bool     // --respect-source-config
	VersionedDirs       bool     // --versioned-dirs
}

// Vendor runs `cargo vendor`, downloading and writing every package of the
// configured manifests into dest with no filtering. Filtering happens
// afterwards, against the directory this call produced.
func Vendor(ctx context.Context, dest string, opts VendorOptions) error {
	args := []string{"vendor"}
	if opts.ManifestPath != "" {
		args = append(args, "--manifest-path", opts.ManifestPath)
	}
	for _, m := range opts.Sync {
		args = append(args, "--sync", m)
	}
	if opts.Offline {
		args = append(args, "--offline")
	}
	if opts.RespectSourceConfig {
		args = append(args, "--respect-source-config")
	}
	if opts.VersionedDirs {
		args = append(args, "--versioned-dirs")
	}
	args = append(args, dest)

	_, err := runCargo(ctx, args...)
	return err
}
