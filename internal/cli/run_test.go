package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
	"github.com/coreos/cargo-vendor-filterer/pkg/platforms"
)

const embeddedManifest = `[package]
name = "app"
version = "0.1.0"

[package.metadata.vendor-filter]
platforms = ["x86_64-unknown-linux-gnu"]
keep-dep-kinds = "no-dev"
exclude-crate-paths = [{ name = "curl-sys", exclude = "curl" }]
`

func testLogger() *charmlog.Logger {
	return newLogger(io.Discard, charmlog.InfoLevel)
}

func TestFilterFromFlags(t *testing.T) {
	flags := rootFlags{
		platforms:     []string{"*-unknown-linux-gnu", "wasm32-unknown-unknown"},
		tier:          "2",
		excludes:      []string{"openssl-src#openssl", "*#tests"},
		allFeatures:   true,
		keepDepKinds:  "normal",
		versionedDirs: true,
	}
	f, err := filterFromFlags(flags)
	if err != nil {
		t.Fatalf("filterFromFlags: %v", err)
	}
	if len(f.Platforms) != 2 {
		t.Errorf("platforms = %v", f.Platforms)
	}
	if f.Tier != platforms.Tier2 {
		t.Errorf("tier = %v, want Tier2", f.Tier)
	}
	if f.KeepDepKinds != cargo.DepKindNormal {
		t.Errorf("kind = %q, want normal", f.KeepDepKinds)
	}
	if !f.Features.AllFeatures || !f.VersionedDirs {
		t.Error("boolean flags not carried over")
	}
	if len(f.Exclude) != 2 || f.Exclude[1].Name != "*" || f.Exclude[1].Path != "tests" {
		t.Errorf("exclude = %v", f.Exclude)
	}
}

func TestFilterFromFlagsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		flags rootFlags
	}{
		{name: "bad tier", flags: rootFlags{tier: "3"}},
		{name: "bad kind", flags: rootFlags{keepDepKinds: "no-everything"}},
		{name: "bad exclude", flags: rootFlags{excludes: []string{"no-separator"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := filterFromFlags(tt.flags)
			if !errors.Is(err, errors.ErrCodeConfig) {
				t.Errorf("code = %q, want CONFIG_ERROR", errors.GetCode(err))
			}
		})
	}
}

func TestResolveFilterPrefersCLI(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(manifest, []byte(embeddedManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := rootFlags{
		manifestPath: manifest,
		platforms:    []string{"aarch64-apple-darwin"},
	}
	f, err := resolveFilter(true, flags, testLogger())
	if err != nil {
		t.Fatalf("resolveFilter: %v", err)
	}
	// The embedded table is replaced wholesale, not merged.
	if len(f.Platforms) != 1 || f.Platforms[0] != "aarch64-apple-darwin" {
		t.Errorf("platforms = %v, want CLI value only", f.Platforms)
	}
	if f.KeepDepKinds != "" {
		t.Errorf("kind = %q, want unset", f.KeepDepKinds)
	}
	if len(f.Exclude) != 0 {
		t.Errorf("exclude = %v, want none", f.Exclude)
	}
}

func TestResolveFilterEmbedded(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(manifest, []byte(embeddedManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := resolveFilter(false, rootFlags{manifestPath: manifest}, testLogger())
	if err != nil {
		t.Fatalf("resolveFilter: %v", err)
	}
	if len(f.Platforms) != 1 || f.Platforms[0] != "x86_64-unknown-linux-gnu" {
		t.Errorf("platforms = %v", f.Platforms)
	}
	if f.KeepDepKinds != cargo.DepKindNoDev {
		t.Errorf("kind = %q, want no-dev", f.KeepDepKinds)
	}
	if len(f.Exclude) != 1 || f.Exclude[0].Name != "curl-sys" {
		t.Errorf("exclude = %v", f.Exclude)
	}
}

func TestResolveFilterNoEmbeddedSection(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(manifest, []byte("[package]\nname = \"app\"\nversion = \"0.1.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := resolveFilter(false, rootFlags{manifestPath: manifest}, testLogger())
	if err != nil {
		t.Fatalf("resolveFilter: %v", err)
	}
	if len(f.Platforms) != 0 || f.KeepDepKinds != "" || len(f.Exclude) != 0 {
		t.Errorf("filter = %+v, want zero value", f)
	}
}
