package vendorfilter

import (
	"testing"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

const cratesIO = "registry+https://github.com/rust-lang/crates.io-index"

func registryPkg(name, version string) *cargo.Package {
	return &cargo.Package{Name: name, Version: version, Source: cratesIO}
}

func setOf(pkgs ...*cargo.Package) cargo.Set {
	s := make(cargo.Set)
	for _, p := range pkgs {
		s[p.ID()] = p
	}
	return s
}

func TestDirectoryKeysSingleVersion(t *testing.T) {
	keys, err := DirectoryKeys(setOf(registryPkg("hex", "0.4.3"), registryPkg("bitflags", "1.3.2")), false)
	if err != nil {
		t.Fatalf("DirectoryKeys: %v", err)
	}
	for _, want := range []string{"hex", "bitflags"} {
		if _, ok := keys[want]; !ok {
			t.Errorf("missing bare directory key %q in %v", want, keys)
		}
	}
	if len(keys) != 2 {
		t.Errorf("key count = %d, want 2", len(keys))
	}
}

func TestDirectoryKeysMultipleVersions(t *testing.T) {
	keys, err := DirectoryKeys(setOf(registryPkg("hex", "0.3.2"), registryPkg("hex", "0.4.3")), false)
	if err != nil {
		t.Fatalf("DirectoryKeys: %v", err)
	}

	if id, ok := keys["hex"]; !ok || id.Version != "0.4.3" {
		t.Errorf("bare name should go to the highest version, got %+v", keys)
	}
	if id, ok := keys["hex-0.3.2"]; !ok || id.Version != "0.3.2" {
		t.Errorf("lower version should get name-version, got %+v", keys)
	}
	if _, ok := keys["hex-0.4.3"]; ok {
		t.Error("highest version must not also get a versioned key")
	}
}

func TestDirectoryKeysVersionOrderingIsSemver(t *testing.T) {
	// Lexically "0.10.0" < "0.9.0", semantically the opposite.
	keys, err := DirectoryKeys(setOf(registryPkg("serde", "0.9.0"), registryPkg("serde", "0.10.0")), false)
	if err != nil {
		t.Fatalf("DirectoryKeys: %v", err)
	}
	if id := keys["serde"]; id.Version != "0.10.0" {
		t.Errorf("bare name went to %s, want 0.10.0", id.Version)
	}
}

func TestDirectoryKeysVersionedDirs(t *testing.T) {
	keys, err := DirectoryKeys(setOf(
		registryPkg("hex", "0.3.2"),
		registryPkg("hex", "0.4.3"),
		registryPkg("bitflags", "1.3.2"),
	), true)
	if err != nil {
		t.Fatalf("DirectoryKeys: %v", err)
	}

	for _, want := range []string{"hex-0.4.3", "hex-0.3.2", "bitflags-1.3.2"} {
		if _, ok := keys[want]; !ok {
			t.Errorf("missing versioned key %q in %v", want, keys)
		}
	}
	if _, ok := keys["hex"]; ok {
		t.Error("versioned-dirs must not produce bare keys")
	}
}

func TestDirectoryKeysSkipsLocalPackages(t *testing.T) {
	local := &cargo.Package{Name: "myproject", Version: "0.1.0"} // empty source
	keys, err := DirectoryKeys(setOf(local, registryPkg("hex", "0.4.3")), false)
	if err != nil {
		t.Fatalf("DirectoryKeys: %v", err)
	}
	if _, ok := keys["myproject"]; ok {
		t.Error("local path packages never appear in the vendor directory")
	}
	if len(keys) != 1 {
		t.Errorf("key count = %d, want 1", len(keys))
	}
}

func TestDirectoryKeysCollision(t *testing.T) {
	// Same name and version from two origins reconcile to the same key.
	a := &cargo.Package{Name: "hex", Version: "0.4.3", Source: cratesIO}
	b := &cargo.Package{Name: "hex", Version: "0.4.3", Source: "registry+https://mirror.example/index"}
	_, err := DirectoryKeys(setOf(a, b), true)
	if err == nil {
		t.Fatal("expected collision error")
	}
	if !errors.Is(err, errors.ErrCodeIntegrityInvariant) {
		t.Errorf("code = %q, want INTEGRITY_INVARIANT", errors.GetCode(err))
	}
}
