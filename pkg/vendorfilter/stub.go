package vendorfilter

import (
	"os"
	"path/filepath"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// stubSource is the single source file of a stubbed crate. cargo resolves a
// library target at this default path, so an empty file here keeps the crate
// structurally valid.
const stubSource = "src/lib.rs"

// StubCrate destructively replaces an unwanted crate directory with a minimal
// placeholder: the crate's manifest stripped of declarations that would fail
// validation, one empty source file, and a repaired checksum manifest.
//
// The per-file digest map is replaced with entries for exactly the surviving
// files; the aggregate crate digest is deliberately left untouched, since the
// downstream build tool validates per-file digests for vendored content.
// There is no rollback: a failure mid-replacement leaves the crate broken,
// which is an unambiguous state for the caller to surface.
func StubCrate(crateDir string) error {
	manifest, err := cargo.LoadManifest(filepath.Join(crateDir, cargo.ManifestFile))
	if err != nil {
		return err
	}
	checksum, err := cargo.LoadChecksum(crateDir)
	if err != nil {
		return err
	}

	manifest.StripForStub()
	manifestData, err := manifest.Encode()
	if err != nil {
		return err
	}

	if err := os.RemoveAll(crateDir); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "removing crate %s", crateDir)
	}
	if err := os.MkdirAll(filepath.Join(crateDir, filepath.Dir(stubSource)), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "recreating crate %s", crateDir)
	}
	if err := os.WriteFile(filepath.Join(crateDir, stubSource), nil, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "writing stub source in %s", crateDir)
	}
	if err := os.WriteFile(filepath.Join(crateDir, cargo.ManifestFile), manifestData, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "writing stub manifest in %s", crateDir)
	}

	checksum.Files = map[string]string{
		cargo.ManifestFile: cargo.SHA256Bytes(manifestData),
		stubSource:         cargo.SHA256Bytes(nil),
	}
	return checksum.Save(crateDir)
}
