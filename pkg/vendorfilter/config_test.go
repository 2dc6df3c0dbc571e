package vendorfilter

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

func TestParseExcludeRule(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ExcludeRule
		wantErr bool
	}{
		{"simple", "hex#benches", ExcludeRule{Name: "hex", Path: "benches"}, false},
		{"wildcard name", "*#tests", ExcludeRule{Name: "*", Path: "tests"}, false},
		{"nested path", "libz-sys#src/smoke.c", ExcludeRule{Name: "libz-sys", Path: "src/smoke.c"}, false},
		{"glob path", "winapi#lib/*.a", ExcludeRule{Name: "winapi", Path: "lib/*.a"}, false},
		{"missing separator", "hexbenches", ExcludeRule{}, true},
		{"empty name", "#benches", ExcludeRule{}, true},
		{"empty path", "hex#", ExcludeRule{}, true},
		{"absolute path", "hex#/tmp/benches", ExcludeRule{}, true},
		{"escaping path", "hex#../other", ExcludeRule{}, true},
		{"escaping after clean", "hex#src/../../other", ExcludeRule{}, true},
		{"crate root", "hex#.", ExcludeRule{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExcludeRule(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, errors.ErrCodeConfig) {
					t.Errorf("code = %q, want CONFIG_ERROR", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExcludeRule: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseExcludeRule(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmbedded(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "foo"
version = "0.1.0"

[dependencies]
hex = "0.4"

[package.metadata.vendor-filter]
platforms = ["x86_64-unknown-linux-gnu", "*-apple-darwin"]
tier = "2"
all-features = true
keep-dep-kinds = "no-dev"
exclude-crate-paths = [
    { name = "hex", exclude = "benches" },
    { name = "*", exclude = "tests" },
]
`)

	f, warnings, err := LoadEmbedded(path)
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if f == nil {
		t.Fatal("expected embedded filter")
	}
	if !reflect.DeepEqual(f.Platforms, []string{"x86_64-unknown-linux-gnu", "*-apple-darwin"}) {
		t.Errorf("platforms = %v", f.Platforms)
	}
	if f.Tier.String() != "2" {
		t.Errorf("tier = %q, want 2", f.Tier)
	}
	if !f.Features.AllFeatures {
		t.Error("all-features not picked up")
	}
	if f.KeepDepKinds != cargo.DepKindNoDev {
		t.Errorf("keep-dep-kinds = %q", f.KeepDepKinds)
	}
	want := []ExcludeRule{{Name: "hex", Path: "benches"}, {Name: "*", Path: "tests"}}
	if !reflect.DeepEqual(f.Exclude, want) {
		t.Errorf("exclude = %v, want %v", f.Exclude, want)
	}
}

func TestLoadEmbeddedAbsent(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "foo"
version = "0.1.0"
`)
	f, warnings, err := LoadEmbedded(path)
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	if f != nil || warnings != nil {
		t.Errorf("expected no config, got %+v, %v", f, warnings)
	}
}

func TestLoadEmbeddedUnknownKeysWarn(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "foo"
version = "0.1.0"

[package.metadata.vendor-filter]
tier = "1"
frobnicate = true
`)
	f, warnings, err := LoadEmbedded(path)
	if err != nil {
		t.Fatalf("unknown keys must warn, not fail: %v", err)
	}
	if f == nil {
		t.Fatal("expected embedded filter despite unknown key")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "frobnicate") {
		t.Errorf("warnings = %v, want one naming frobnicate", warnings)
	}
}

func TestLoadEmbeddedMissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	if _, _, err := LoadEmbedded(path); !errors.Is(err, errors.ErrCodeLayout) {
		t.Errorf("missing manifest: code = %q, want LAYOUT_ERROR", errors.GetCode(err))
	}
}

func TestLoadEmbeddedMalformedManifest(t *testing.T) {
	path := writeManifest(t, "[package\nname =")
	if _, _, err := LoadEmbedded(path); !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("malformed manifest: code = %q, want PARSE_ERROR", errors.GetCode(err))
	}
}

func TestLoadEmbeddedInvalidValues(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "foo"
version = "0.1.0"

[package.metadata.vendor-filter]
tier = "9"
`)
	if _, _, err := LoadEmbedded(path); !errors.Is(err, errors.ErrCodeConfig) {
		t.Errorf("invalid tier: code = %q, want CONFIG_ERROR", errors.GetCode(err))
	}
}
