package cargo

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// unwantedTargetKeys are target declarations cargo validates against files on
// disk. A stubbed crate no longer carries those files, so the declarations
// must go or cargo errors out on the vendored stub.
var unwantedTargetKeys = []string{"bin", "example", "test", "bench"}

// unwantedPackageKeys are package-section keys that are invalid without the
// native artifacts they reference.
var unwantedPackageKeys = []string{"links", "build"}

// Manifest is a parsed Cargo.toml. It is held as a generic tree so unknown
// tables round-trip through re-serialization untouched.
type Manifest struct {
	root map[string]any
}

// LoadManifest reads and parses a Cargo.toml. A missing or unreadable file is
// a LAYOUT_ERROR; malformed TOML is a PARSE_ERROR.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayout, err, "reading manifest %s", path)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses Cargo.toml bytes. The path is used for diagnostics only.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	root := make(map[string]any)
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parsing manifest %s", path)
	}
	return &Manifest{root: root}, nil
}

// PackageName returns package.name, or empty if absent.
func (m *Manifest) PackageName() string {
	pkg, ok := m.root["package"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := pkg["name"].(string)
	return name
}

// PackageVersion returns package.version, or empty if absent.
func (m *Manifest) PackageVersion() string {
	pkg, ok := m.root["package"].(map[string]any)
	if !ok {
		return ""
	}
	version, _ := pkg["version"].(string)
	return version
}

// StripForStub removes the manifest keys that would make cargo reject a
// stubbed crate: target declarations whose files are gone, and package keys
// that require linked native artifacts. Everything else, dependencies
// included, stays so the manifest remains structurally valid to cargo.
func (m *Manifest) StripForStub() {
	for _, key := range unwantedTargetKeys {
		delete(m.root, key)
	}
	if pkg, ok := m.root["package"].(map[string]any); ok {
		for _, key := range unwantedPackageKeys {
			delete(pkg, key)
		}
	}
}

// Encode serializes the manifest back to TOML. Key order is deterministic
// (sorted within each table), which keeps stub output reproducible.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m.root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "re-serializing manifest")
	}
	return buf.Bytes(), nil
}
