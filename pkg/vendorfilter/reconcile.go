package vendorfilter

import (
	"sort"

	"golang.org/x/mod/semver"

	"github.com/coreos/cargo-vendor-filterer/pkg/cargo"
	"github.com/coreos/cargo-vendor-filterer/pkg/errors"
)

// DirectoryKeys maps each included registry package to the on-disk directory
// name the materializer used for it, keyed by directory name.
//
// cargo vendor's naming convention is undocumented but stable: when one name
// is vendored at several versions, the highest version gets the bare crate
// name and every other version gets "name-version"; with --versioned-dirs
// every crate gets "name-version" regardless. Local path packages never
// appear in the vendor directory and are skipped.
//
// The mapping must be injective; two identities reconciling to the same
// directory key is an internal-invariant violation, not a user error.
func DirectoryKeys(included cargo.Set, versionedDirs bool) (map[string]cargo.ID, error) {
	byName := make(map[string][]*cargo.Package)
	for _, pkg := range included.Sorted() {
		if !pkg.Registry() {
			continue
		}
		byName[pkg.Name] = append(byName[pkg.Name], pkg)
	}

	keys := make(map[string]cargo.ID)
	assign := func(key string, id cargo.ID) error {
		if prev, ok := keys[key]; ok {
			return errors.New(errors.ErrCodeIntegrityInvariant,
				"packages %s@%s and %s@%s reconcile to the same directory %q",
				prev.Name, prev.Version, id.Name, id.Version, key)
		}
		keys[key] = id
		return nil
	}

	for name, group := range byName {
		// Highest version first; cargo's tie-break follows the same order.
		sort.Slice(group, func(i, j int) bool {
			return semver.Compare("v"+group[i].Version, "v"+group[j].Version) > 0
		})
		for i, pkg := range group {
			key := name
			if versionedDirs || i > 0 {
				key = name + "-" + pkg.Version
			}
			if err := assign(key, pkg.ID()); err != nil {
				return nil, err
			}
		}
	}
	return keys, nil
}
