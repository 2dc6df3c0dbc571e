// Package pkg provides the core libraries for cargo-vendor-filterer.
//
// # Overview
//
// cargo-vendor-filterer narrows a fully vendored Rust dependency tree down to
// the packages required for a configured set of platforms, features, and
// dependency kinds. The pkg directory is organized into five areas:
//
//  1. [platforms] - Target-triple matching, wildcard expansion, curated tiers
//  2. [cargo] - Translation boundary to the cargo toolchain (metadata, tree,
//     vendor, manifests, checksum files)
//  3. [vendorfilter] - Filtering engine and vendor-directory reconciliation
//  4. [archive] - Byte-reproducible tar/tar.gz/tar.zstd output
//  5. [errors] - Structured error codes shared by all of the above
//
// # Architecture
//
// The typical data flow through a vendoring run:
//
//	Cargo.toml manifests
//	         ↓
//	    [cargo] package (metadata, dependency edges)
//	         ↓
//	    [vendorfilter] package (inclusion set, directory reconciliation)
//	         ↓
//	    [archive] package (optional reproducible archive)
//	         ↓
//	    vendor/ directory or vendor.tar[.gz|.zstd]
//
// # Quick Start
//
// Run the full pipeline programmatically:
//
//	import (
//	    "context"
//	    "github.com/coreos/cargo-vendor-filterer/pkg/archive"
//	    "github.com/coreos/cargo-vendor-filterer/pkg/vendorfilter"
//	)
//
//	runner := vendorfilter.NewRunner(nil)
//	result, err := runner.Run(context.Background(), vendorfilter.Options{
//	    Format: archive.FormatTarGz,
//	    Filter: vendorfilter.Filter{Platforms: []string{"*-unknown-linux-gnu"}},
//	})
package pkg
