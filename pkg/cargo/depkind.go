package cargo

import "github.com/coreos/cargo-vendor-filterer/pkg/errors"

// DepKind is the dependency-kind constraint for edge filtering. The three
// base kinds classify an edge as a normal, build-time, or development-only
// dependency; each complement is the exact union of the other two.
type DepKind string

const (
	DepKindAll      DepKind = "all"
	DepKindNormal   DepKind = "normal"
	DepKindBuild    DepKind = "build"
	DepKindDev      DepKind = "dev"
	DepKindNoNormal DepKind = "no-normal"
	DepKindNoBuild  DepKind = "no-build"
	DepKindNoDev    DepKind = "no-dev"
)

// depKindEdges maps each kind to the explicit set of edge classes it keeps.
// The complements are spelled out as unions rather than passed through as
// negation strings, so the semantics stay exact regardless of how the edge
// lister interprets "no-" prefixes.
var depKindEdges = map[DepKind]string{
	DepKindAll:      "normal,build,dev",
	DepKindNormal:   "normal",
	DepKindBuild:    "build",
	DepKindDev:      "dev",
	DepKindNoNormal: "build,dev",
	DepKindNoBuild:  "normal,dev",
	DepKindNoDev:    "normal,build",
}

// ParseDepKind validates a dependency-kind selector.
func ParseDepKind(s string) (DepKind, error) {
	k := DepKind(s)
	if _, ok := depKindEdges[k]; !ok {
		return "", errors.New(errors.ErrCodeConfig,
			"invalid dependency kind %q (valid: all, normal, build, dev, no-normal, no-build, no-dev)", s)
	}
	return k, nil
}

// String returns the selector form of the kind.
func (k DepKind) String() string { return string(k) }

// EdgeArg returns the --edges value for cargo tree: the comma-joined list of
// edge classes this kind includes.
func (k DepKind) EdgeArg() string { return depKindEdges[k] }
