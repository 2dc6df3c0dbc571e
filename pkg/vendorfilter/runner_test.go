package vendorfilter

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/coreos/cargo-vendor-filterer/pkg/archive"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

func TestOptionsDefaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantFormat archive.Format
		wantOutput string
	}{
		{"empty picks dir", Options{}, archive.FormatDir, "vendor"},
		{"tar default output", Options{Format: archive.FormatTar}, archive.FormatTar, "vendor.tar"},
		{"tar.gz default output", Options{Format: archive.FormatTarGz}, archive.FormatTarGz, "vendor.tar.gz"},
		{"explicit output kept", Options{Output: "deps"}, archive.FormatDir, "deps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err != nil {
				t.Fatalf("ValidateAndSetDefaults: %v", err)
			}
			if tt.opts.Format != tt.wantFormat {
				t.Errorf("format = %q, want %q", tt.opts.Format, tt.wantFormat)
			}
			if tt.opts.Output != tt.wantOutput {
				t.Errorf("output = %q, want %q", tt.opts.Output, tt.wantOutput)
			}
		})
	}
}

func TestRunOutputConflict(t *testing.T) {
	// The conflict check runs before anything else, so no toolchain is
	// involved; any pre-existing path at the destination aborts the run.
	output := filepath.Join(t.TempDir(), "vendor")
	if err := os.Mkdir(output, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := NewRunner(nil).Run(context.Background(), Options{Output: output})
	if !errors.Is(err, errors.ErrCodeOutputConflict) {
		t.Fatalf("code = %q, want OUTPUT_CONFLICT", errors.GetCode(err))
	}
}

func TestRunOutputConflictFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "vendor.tar")
	if err := os.WriteFile(output, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewRunner(nil).Run(context.Background(), Options{
		Output: output,
		Format: archive.FormatTar,
	})
	if !errors.Is(err, errors.ErrCodeOutputConflict) {
		t.Fatalf("code = %q, want OUTPUT_CONFLICT", errors.GetCode(err))
	}
}

// TestRunStubsPlatformGatedCrates runs the full pipeline against a real cargo
// toolchain: a crate whose only dependency is gated on windows, vendored for
// a linux target, must end up stubbed.
func TestRunStubsPlatformGatedCrates(t *testing.T) {
	if _, err := exec.LookPath("cargo"); err != nil {
		t.Skip("cargo not available")
	}
	if testing.Short() {
		t.Skip("fetches crates from the network")
	}

	project := t.TempDir()
	manifest := filepath.Join(project, "Cargo.toml")
	manifestData := `[package]
name = "gated"
version = "0.1.0"
edition = "2021"

[target."cfg(windows)".dependencies]
winapi = "=0.3.9"
`
	if err := os.WriteFile(manifest, []byte(manifestData), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(project, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(project, "src", "lib.rs"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(project, "vendor")
	result, err := NewRunner(nil).Run(context.Background(), Options{
		Output:       output,
		ManifestPath: manifest,
		Filter:       Filter{Platforms: []string{"x86_64-unknown-linux-gnu"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Included >= result.Universe {
		t.Errorf("included = %d, universe = %d; the gated dependency should have been filtered",
			result.Included, result.Universe)
	}
	if result.Stats.Stubbed == 0 {
		t.Error("expected at least one stubbed crate")
	}

	// The windows-only crate is present but reduced to a stub.
	info, err := os.Stat(filepath.Join(output, "winapi", "src", "lib.rs"))
	if err != nil {
		t.Fatalf("winapi stub source missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("winapi src/lib.rs size = %d, want 0", info.Size())
	}
	c, err := os.ReadFile(filepath.Join(output, "winapi", ".cargo-checksum.json"))
	if err != nil {
		t.Fatalf("winapi checksum manifest missing: %v", err)
	}
	if len(c) == 0 {
		t.Error("winapi checksum manifest is empty")
	}
}
